package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Factory produces a service instance. It is invoked at most once, on the
// first lookup of the service, and the result is cached as a singleton.
type Factory func() (any, error)

// DuplicateServiceError is returned when two modules try to claim the same
// service name. Service names are globally unique by design.
type DuplicateServiceError struct {
	Service  string
	Owner    string // module that registered first
	Claimant string // module attempting the second registration
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("service %q already registered by module %q, rejected duplicate from module %q",
		e.Service, e.Owner, e.Claimant)
}

// ServiceNotFoundError is returned when no module registered the service.
type ServiceNotFoundError struct {
	Service string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %q is not registered", e.Service)
}

// ServiceNotPublicError is returned when a service exists but its owning
// module did not declare it public.
type ServiceNotPublicError struct {
	Service string
	Owner   string
}

func (e *ServiceNotPublicError) Error() string {
	return fmt.Sprintf("service %q is private to module %q", e.Service, e.Owner)
}

type entry struct {
	owner    string
	public   bool
	factory  Factory
	instance any
	built    bool
	buildErr error
}

// Registry is the shared service container. Modules never hold it directly;
// they reach services through a Scope handed out by the kernel, which
// enforces the public/private boundary. The registry is populated during
// boot (single-threaded) and read-mostly afterwards, so lookups take a
// read lock and only lazy construction upgrades to a write lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a factory-backed service owned by the given module.
func (r *Registry) Register(owner, name string, factory Factory, public bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		return &DuplicateServiceError{Service: name, Owner: existing.owner, Claimant: owner}
	}
	r.entries[name] = &entry{owner: owner, public: public, factory: factory}
	return nil
}

// RegisterInstance adds an already-constructed service.
func (r *Registry) RegisterInstance(owner, name string, instance any, public bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		return &DuplicateServiceError{Service: name, Owner: existing.owner, Claimant: owner}
	}
	r.entries[name] = &entry{owner: owner, public: public, instance: instance, built: true}
	return nil
}

// Has reports whether a service is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Owner returns the module that registered the service.
func (r *Registry) Owner(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return "", false
	}
	return e.owner, true
}

// Get resolves a service regardless of visibility. It is intended for the
// kernel and for a module resolving its own services; external consumers go
// through ResolvePublic or a Scope.
func (r *Registry) Get(name string) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	if ok && e.built {
		defer r.mu.RUnlock()
		if e.buildErr != nil {
			return nil, e.buildErr
		}
		return e.instance, nil
	}
	r.mu.RUnlock()

	if !ok {
		return nil, &ServiceNotFoundError{Service: name}
	}
	return r.build(name)
}

// ResolvePublic resolves a service only if its owning module declared it
// public.
func (r *Registry) ResolvePublic(name string) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.RUnlock()
		return nil, &ServiceNotFoundError{Service: name}
	}
	if !e.public {
		r.mu.RUnlock()
		return nil, &ServiceNotPublicError{Service: name, Owner: e.owner}
	}
	r.mu.RUnlock()

	return r.Get(name)
}

// build constructs the singleton under the write lock. Factories run at
// boot or on first request; a failed build is cached so the factory is not
// retried.
func (r *Registry) build(name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, &ServiceNotFoundError{Service: name}
	}
	if e.built {
		if e.buildErr != nil {
			return nil, e.buildErr
		}
		return e.instance, nil
	}

	instance, err := e.factory()
	e.built = true
	if err != nil {
		e.buildErr = fmt.Errorf("factory for service %q failed: %w", name, err)
		return nil, e.buildErr
	}
	e.instance = instance
	return instance, nil
}

// Names returns all registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scope returns a module-bound view of the registry: the module sees its
// own services, public or not, and everyone else's public services.
func (r *Registry) Scope(module string) *Scope {
	return &Scope{registry: r, module: module}
}

// Scope is the handle modules use to consume services. It keeps the
// declared dependency graph honest: private services of other modules are
// unreachable through it.
type Scope struct {
	registry *Registry
	module   string
}

// Module returns the name of the module this scope belongs to.
func (s *Scope) Module() string { return s.module }

// Has reports whether the service would resolve through this scope.
func (s *Scope) Has(name string) bool {
	s.registry.mu.RLock()
	e, ok := s.registry.entries[name]
	s.registry.mu.RUnlock()
	return ok && (e.public || e.owner == s.module)
}

// Get resolves a service visible to this scope's module.
func (s *Scope) Get(name string) (any, error) {
	s.registry.mu.RLock()
	e, ok := s.registry.entries[name]
	s.registry.mu.RUnlock()

	if !ok {
		return nil, &ServiceNotFoundError{Service: name}
	}
	if !e.public && e.owner != s.module {
		return nil, &ServiceNotPublicError{Service: name, Owner: e.owner}
	}
	return s.registry.Get(name)
}
