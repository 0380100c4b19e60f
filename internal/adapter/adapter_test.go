package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreambundler/CloneWorks/internal/adapter/comfyui"
	"github.com/dreambundler/CloneWorks/internal/models"
)

var _ Adapter = (*comfyui.Adapter)(nil)

type stubAdapter struct{ name string }

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Render(plan *models.Plan) *models.Workflow {
	return &models.Workflow{Meta: models.WorkflowMeta{Source: s.name, PlanID: plan.ID}}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"comfyui"}, r.Names())

	a, err := r.Lookup(models.AdapterComfyUI)
	require.NoError(t, err)
	assert.Equal(t, "comfyui", a.Name())
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Lookup("automatic1111")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAdapter))
	assert.Contains(t, err.Error(), "comfyui")
}

func TestRegistry_RenderPlan(t *testing.T) {
	r := NewRegistry(stubAdapter{name: "stub"}, comfyui.New())

	wf, err := r.RenderPlan(&models.Plan{ID: "plan_1", Adapter: "stub"})
	require.NoError(t, err)
	assert.Equal(t, "stub", wf.Meta.Source)

	wf, err = r.RenderPlan(&models.Plan{ID: "plan_2", Adapter: models.AdapterComfyUI})
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowSource, wf.Meta.Source)
	assert.Equal(t, "plan_2", wf.Meta.PlanID)

	wf, err = r.RenderPlan(&models.Plan{ID: "plan_3"})
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowSource, wf.Meta.Source)

	_, err = r.RenderPlan(&models.Plan{Adapter: "missing"})
	assert.ErrorIs(t, err, ErrUnknownAdapter)

	_, err = r.RenderPlan(nil)
	assert.Error(t, err)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry(stubAdapter{name: "a"})
	r.Register(stubAdapter{name: "a"})
	r.Register(stubAdapter{name: "b"})
	assert.Equal(t, []string{"a", "b"}, r.Names())
}
