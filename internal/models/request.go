package models

// ModeImage is the only request mode that produces a render step.
const ModeImage = "image"

// Document is an opaque key-value document. The planner never looks inside one;
// it is carried from the request into step params as-is.
type Document map[string]any

// Identity selects the subject LoRA loaded ahead of rendering.
// All fields are optional.
type Identity struct {
	LoRA     string   `json:"lora,omitempty" yaml:"lora,omitempty" toml:"lora,omitempty"`
	Strength *float64 `json:"strength,omitempty" yaml:"strength,omitempty" toml:"strength,omitempty"`
	ID       *string  `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
}

// Request is a declarative generation request. No field is required; an absent
// field means no step is produced for that concern. Unknown fields are ignored
// by every decoder.
type Request struct {
	Identity *Identity `json:"identity,omitempty" yaml:"identity,omitempty" toml:"identity,omitempty"`
	Mode     string    `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Style    Document  `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
	Pose     Document  `json:"pose,omitempty" yaml:"pose,omitempty" toml:"pose,omitempty"`
	Garments []any     `json:"garments,omitempty" yaml:"garments,omitempty" toml:"garments,omitempty"`
	Output   Document  `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
}

// HasIdentityLoRA reports whether the request names an identity LoRA.
func (r *Request) HasIdentityLoRA() bool {
	return r != nil && r.Identity != nil && r.Identity.LoRA != ""
}

// WantsImage reports whether the request asks for an image render.
// The match on Mode is exact.
func (r *Request) WantsImage() bool {
	return r != nil && r.Mode == ModeImage
}
