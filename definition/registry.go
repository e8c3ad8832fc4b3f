package definition

import (
	"fmt"
	"sync"
)

// Registry resolves process keys to their definitions.
//
// Registration happens during engine construction; lookups may occur
// concurrently thereafter.
type Registry struct {
	m         sync.RWMutex
	processes map[string]*Process
}

// Register adds a process definition to the registry.
//
// It returns an error if a definition with the same key is already
// registered.
func (r *Registry) Register(p *Process) error {
	r.m.Lock()
	defer r.m.Unlock()

	if _, ok := r.processes[p.Key]; ok {
		return fmt.Errorf("process %s is already registered", p.Key)
	}

	if r.processes == nil {
		r.processes = map[string]*Process{}
	}

	r.processes[p.Key] = p

	return nil
}

// Process returns the process definition with the given key.
func (r *Registry) Process(key string) (*Process, bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	p, ok := r.processes[key]
	return p, ok
}

// Range calls fn once for each registered process definition, stopping early
// if fn returns false.
func (r *Registry) Range(fn func(*Process) bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	for _, p := range r.processes {
		if !fn(p) {
			return
		}
	}
}
