// Package planner translates a generation request into an ordered, backend
// neutral execution plan.
//
// Planning is a pure function of the request apart from the plan id, which is
// drawn from an injectable IDGenerator. Steps are decided by a fixed, ordered
// list of rules; each rule is independent and either contributes one step or
// nothing. New rules are appended so earlier steps keep their positions.
package planner

import (
	"maps"
	"slices"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// DefaultIdentityStrength is used when the request names a LoRA without a strength.
const DefaultIdentityStrength = 1.0

// rule contributes at most one step to a plan.
type rule struct {
	name  models.StepName
	build func(req *models.Request) (models.StepParams, bool)
}

// rules is evaluated in order. The identity step must stay first.
var rules = []rule{
	{name: models.StepLoadIdentityLoRA, build: identityLoRAParams},
	{name: models.StepRenderImage, build: renderImageParams},
}

// Planner builds plans. The zero value is not usable; use New.
type Planner struct {
	ids     IDGenerator
	adapter string
}

// Option configures a Planner.
type Option func(*Planner)

// WithIDGenerator replaces the plan id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Planner) {
		if g != nil {
			p.ids = g
		}
	}
}

// New creates a Planner targeting the ComfyUI adapter.
func New(opts ...Option) *Planner {
	p := &Planner{
		ids:     NewUUIDGenerator(nil),
		adapter: models.AdapterComfyUI,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultPlanner = New()

// BuildPlan builds a plan with the default planner.
func BuildPlan(req *models.Request) *models.Plan {
	return defaultPlanner.BuildPlan(req)
}

// BuildPlan converts req into a plan. It never fails: a nil or empty request
// yields a plan with no steps. Every call gets a fresh plan id, so identical
// requests produce identical steps under distinct ids.
func (p *Planner) BuildPlan(req *models.Request) *models.Plan {
	if req == nil {
		req = &models.Request{}
	}

	steps := make([]models.Step, 0, len(rules))
	for _, r := range rules {
		params, ok := r.build(req)
		if !ok {
			continue
		}
		steps = append(steps, models.Step{Name: r.name, Params: params})
	}

	return &models.Plan{
		ID:      p.ids.NewPlanID(),
		Adapter: p.adapter,
		Steps:   steps,
	}
}

func identityLoRAParams(req *models.Request) (models.StepParams, bool) {
	if !req.HasIdentityLoRA() {
		return nil, false
	}

	id := req.Identity
	params := models.LoadIdentityLoRAParams{
		LoRA:     id.LoRA,
		Strength: DefaultIdentityStrength,
	}
	if id.Strength != nil {
		params.Strength = *id.Strength
	}
	if id.ID != nil {
		identityID := *id.ID
		params.IdentityID = &identityID
	}
	return params, true
}

func renderImageParams(req *models.Request) (models.StepParams, bool) {
	if !req.WantsImage() {
		return nil, false
	}

	return models.RenderImageParams{
		Style:    cloneDocument(req.Style),
		Pose:     cloneDocument(req.Pose),
		Garments: cloneSequence(req.Garments),
		Output:   cloneDocument(req.Output),
	}, true
}

// cloneDocument copies the top level of d; nil becomes an empty document.
func cloneDocument(d models.Document) models.Document {
	if d == nil {
		return models.Document{}
	}
	return maps.Clone(d)
}

func cloneSequence(s []any) []any {
	if s == nil {
		return []any{}
	}
	return slices.Clone(s)
}
