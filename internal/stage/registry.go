package stage

import (
	"fmt"
	"sort"
	"sync"

	"fieldstack/internal/pipeline"
)

// Registry is a name-keyed table of stage constructors. Stage kinds register
// under their stable identifier; the executor and CLI look them up by name.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]func() Stage
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]func() Stage)}
}

// Register publishes a stage constructor under id. Registering the same id
// twice is a configuration error.
func (r *Registry) Register(id string, construct func() Stage) error {
	if id == "" || construct == nil {
		return pipeline.Wrap(pipeline.ErrConfiguration, "registry", "register",
			"stage id and constructor are required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[id]; exists {
		return pipeline.Wrap(pipeline.ErrConfiguration, "registry", "register",
			fmt.Sprintf("stage %q already registered", id), nil)
	}
	r.stages[id] = construct
	return nil
}

// New constructs a fresh stage instance for id.
func (r *Registry) New(id string) (Stage, error) {
	r.mu.RLock()
	construct, ok := r.stages[id]
	r.mu.RUnlock()

	if !ok {
		return nil, pipeline.Wrap(pipeline.ErrNotFound, "registry", "lookup",
			fmt.Sprintf("stage %q is not registered", id), nil)
	}
	return construct(), nil
}

// Names returns the registered stage ids in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stages))
	for id := range r.stages {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
