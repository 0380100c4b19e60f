// Package adapter resolves the backend adapter a plan is rendered with.
package adapter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dreambundler/CloneWorks/internal/adapter/comfyui"
	"github.com/dreambundler/CloneWorks/internal/models"
)

// ErrUnknownAdapter is returned when no adapter is registered for a plan's tag.
var ErrUnknownAdapter = errors.New("unknown adapter")

// Adapter translates a neutral plan into a backend workflow document.
// Implementations are stateless and must not fail.
type Adapter interface {
	Name() string
	Render(plan *models.Plan) *models.Workflow
}

// Registry maps adapter tags to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in adapter.
func DefaultRegistry() *Registry {
	return NewRegistry(comfyui.New())
}

// Register adds a, replacing any adapter with the same name.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownAdapter, name, r.Names())
	}
	return a, nil
}

// Names lists registered adapter names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderPlan renders plan with the adapter named by its Adapter tag.
// An untagged plan is rendered for ComfyUI.
func (r *Registry) RenderPlan(plan *models.Plan) (*models.Workflow, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan cannot be nil")
	}
	name := plan.Adapter
	if name == "" {
		name = models.AdapterComfyUI
	}
	a, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return a.Render(plan), nil
}
