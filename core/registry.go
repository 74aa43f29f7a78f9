package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ResolverRegistry is a concurrent-safe name -> resolver map. Registration
// happens once at wiring time; lookups run on every spec binding.
type ResolverRegistry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{resolvers: make(map[string]Resolver)}
}

func (r *ResolverRegistry) Register(name string, fn Resolver) error {
	if fn == nil {
		return fmt.Errorf("core: resolver function is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("core: resolver name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resolvers[name]; exists {
		return fmt.Errorf("core: resolver already registered: %s", name)
	}
	r.resolvers[name] = fn
	return nil
}

func (r *ResolverRegistry) Get(name string) (Resolver, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	fn, ok := r.resolvers[name]
	r.mu.RUnlock()
	return fn, ok
}

func (r *ResolverRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.resolvers))
	for name := range r.resolvers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
