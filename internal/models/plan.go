package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AdapterComfyUI names the only backend plans are currently rendered for.
const AdapterComfyUI = "comfyui"

// StepName identifies the operation a step performs.
type StepName string

const (
	// StepLoadIdentityLoRA loads the subject LoRA. Always first when present.
	StepLoadIdentityLoRA StepName = "load_identity_lora"
	// StepRenderImage renders a single image.
	StepRenderImage StepName = "render_image"
)

// ErrUnknownStep is returned when a plan document names a step kind that does not exist.
var ErrUnknownStep = errors.New("unknown step")

// ErrMissingParam is returned when a step in a plan document lacks a required param.
var ErrMissingParam = errors.New("missing required param")

// stepOrder is the fixed position of each step kind within a plan.
var stepOrder = map[StepName]int{
	StepLoadIdentityLoRA: 0,
	StepRenderImage:      1,
}

// StepParams is implemented by the params type of every step kind.
type StepParams interface {
	StepName() StepName
}

// LoadIdentityLoRAParams are the params of a load_identity_lora step.
type LoadIdentityLoRAParams struct {
	LoRA       string  `json:"lora"`
	Strength   float64 `json:"strength"`
	IdentityID *string `json:"identity_id"`
}

// StepName implements StepParams.
func (LoadIdentityLoRAParams) StepName() StepName { return StepLoadIdentityLoRA }

// RenderImageParams are the params of a render_image step.
type RenderImageParams struct {
	Style    Document `json:"style"`
	Pose     Document `json:"pose"`
	Garments []any    `json:"garments"`
	Output   Document `json:"output"`
}

// StepName implements StepParams.
func (RenderImageParams) StepName() StepName { return StepRenderImage }

// Step is one named operation of a plan. It has no identity beyond its
// position in Plan.Steps.
type Step struct {
	Name   StepName   `json:"name"`
	Params StepParams `json:"params"`
}

// NewStep wraps params in a step carrying the matching name.
func NewStep(params StepParams) Step {
	return Step{Name: params.StepName(), Params: params}
}

// UnmarshalJSON decodes a step, choosing the params type from the step name.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   StepName        `json:"name"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Params) == 0 || string(raw.Params) == "null" {
		return fmt.Errorf("step %q: params are required", raw.Name)
	}

	var params StepParams
	switch raw.Name {
	case StepLoadIdentityLoRA:
		// A saved plan carries every field the planner wrote; nothing is defaulted
		var p struct {
			LoRA       string   `json:"lora"`
			Strength   *float64 `json:"strength"`
			IdentityID *string  `json:"identity_id"`
		}
		if err := DecodeJSON(raw.Params, &p); err != nil {
			return fmt.Errorf("step %s: %w", raw.Name, err)
		}
		if p.LoRA == "" {
			return fmt.Errorf("step %s: %w: lora", raw.Name, ErrMissingParam)
		}
		if p.Strength == nil {
			return fmt.Errorf("step %s: %w: strength", raw.Name, ErrMissingParam)
		}
		params = LoadIdentityLoRAParams{LoRA: p.LoRA, Strength: *p.Strength, IdentityID: p.IdentityID}
	case StepRenderImage:
		var p RenderImageParams
		if err := DecodeJSON(raw.Params, &p); err != nil {
			return fmt.Errorf("step %s: %w", raw.Name, err)
		}
		params = p
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, raw.Name)
	}

	s.Name = raw.Name
	s.Params = params
	return nil
}

// Plan is the neutral, backend-agnostic ordered list of operations derived
// from a request. It is not modified after construction.
type Plan struct {
	ID      string `json:"planId"`  // Opaque unique token, never parse it
	Adapter string `json:"adapter"` // Backend the plan is intended for
	Steps   []Step `json:"steps"`   // Order is significant
}

// StepNames returns the names of the plan's steps in order.
func (p *Plan) StepNames() []StepName {
	if p == nil {
		return nil
	}
	names := make([]StepName, 0, len(p.Steps))
	for _, step := range p.Steps {
		names = append(names, step.Name)
	}
	return names
}

// Validate checks that a plan read back from a document still honours the
// planner's ordering: each step kind at most once, identity before render,
// and params matching the step name.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}

	seen := make(map[StepName]bool)
	last := -1
	for i, step := range p.Steps {
		pos, ok := stepOrder[step.Name]
		if !ok {
			return fmt.Errorf("step %d: %w: %q", i, ErrUnknownStep, step.Name)
		}
		if step.Params == nil {
			return fmt.Errorf("step %d (%s): params are required", i, step.Name)
		}
		if step.Params.StepName() != step.Name {
			return fmt.Errorf("step %d (%s): params belong to %s", i, step.Name, step.Params.StepName())
		}
		if seen[step.Name] {
			return fmt.Errorf("step %d: %s appears more than once", i, step.Name)
		}
		if pos < last {
			return fmt.Errorf("step %d: %s is out of order", i, step.Name)
		}
		seen[step.Name] = true
		last = pos
	}

	return nil
}
