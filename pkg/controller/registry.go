package controller

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/nody/pkg/domain"
)

// Registry keeps track of live controllers.
// Named controllers can be looked up; unnamed ones are only listed.
type Registry struct {
	mu      sync.RWMutex
	named   map[string]*Controller
	unnamed []*Controller
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		named: make(map[string]*Controller),
	}
}

// Register adds a controller to the registry.
// Returns domain.ErrDuplicateController if the name is taken by another controller.
func (r *Registry) Register(c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.name == "" {
		for _, existing := range r.unnamed {
			if existing == c {
				return nil
			}
		}
		r.unnamed = append(r.unnamed, c)
		return nil
	}
	if existing, ok := r.named[c.name]; ok && existing != c {
		return fmt.Errorf("controller %q: %w", c.name, domain.ErrDuplicateController)
	}
	r.named[c.name] = c
	return nil
}

// Unregister removes a controller. Unknown controllers are ignored.
func (r *Registry) Unregister(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.named[c.name]; ok && existing == c {
		delete(r.named, c.name)
		return
	}
	for i, existing := range r.unnamed {
		if existing == c {
			r.unnamed = append(r.unnamed[:i], r.unnamed[i+1:]...)
			return
		}
	}
}

// Lookup returns the controller registered under name.
func (r *Registry) Lookup(name string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.named[name]
	return c, ok
}

// List returns named controllers sorted by name, followed by unnamed ones in
// registration order.
func (r *Registry) List() []*Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Controller, 0, len(names)+len(r.unnamed))
	for _, name := range names {
		out = append(out, r.named[name])
	}
	return append(out, r.unnamed...)
}
