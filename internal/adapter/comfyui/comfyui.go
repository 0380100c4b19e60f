// Package comfyui renders neutral plans as ComfyUI workflow documents.
//
// The translation is a pass-through: steps are copied into the workflow as-is
// and a meta block records the source plan. Mapping steps onto ComfyUI nodes
// happens downstream.
package comfyui

import (
	"slices"

	"github.com/dreambundler/CloneWorks/internal/models"
)

// Name is the adapter tag plans carry when they target ComfyUI.
const Name = models.AdapterComfyUI

// Adapter is the stateless ComfyUI adapter.
type Adapter struct{}

// New returns a ComfyUI adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name returns the adapter tag.
func (a *Adapter) Name() string {
	return Name
}

// Render converts plan into a ComfyUI workflow.
func (a *Adapter) Render(plan *models.Plan) *models.Workflow {
	return PlanToComfyWorkflow(plan)
}

// PlanToComfyWorkflow converts plan into a ComfyUI workflow. It has no failure
// mode: a nil plan, or one without an id, yields an empty planId and no steps.
func PlanToComfyWorkflow(plan *models.Plan) *models.Workflow {
	wf := &models.Workflow{
		Meta:  models.WorkflowMeta{Source: models.WorkflowSource},
		Steps: []models.Step{},
	}
	if plan == nil {
		return wf
	}

	wf.Meta.PlanID = plan.ID
	if plan.Steps != nil {
		wf.Steps = slices.Clone(plan.Steps)
	}
	return wf
}
