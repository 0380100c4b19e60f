package models

// WorkflowSource is stamped into the meta block of every rendered workflow.
const WorkflowSource = "cloneworks"

// WorkflowMeta identifies where a workflow came from.
type WorkflowMeta struct {
	Source string `json:"source"`
	PlanID string `json:"planId"`
}

// Workflow is a backend workflow document rendered from a plan.
type Workflow struct {
	Meta  WorkflowMeta `json:"meta"`
	Steps []Step       `json:"steps"`
}
