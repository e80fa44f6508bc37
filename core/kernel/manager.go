package kernel

import (
	"fmt"
	"time"

	"plinth/core/dispatcher"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/registry"
	"plinth/core/router"
)

// Manager owns the registered modules and drives the two-phase lifecycle:
// InitializeAll registers every module's services, events and handlers in
// resolved dependency order and runs their Init hooks; BootAll runs a
// second pass for cross-module wiring once every service exists.
//
// Boot is strictly single-threaded and fail-fast: the first error aborts
// the process before any requests are served, annotated with the
// originating module. Partial registries are never observable to request
// handlers.
type Manager struct {
	log        logger.Logger
	registry   *registry.Registry
	emitter    *emitter.Emitter
	dispatcher *dispatcher.Dispatcher

	modules   map[string]Module
	manifests map[string]Manifest
	order     []string
	booted    bool
}

// NewManager creates a Manager around the shared kernel collaborators.
func NewManager(log logger.Logger, reg *registry.Registry, em *emitter.Emitter, disp *dispatcher.Dispatcher) *Manager {
	return &Manager{
		log:        log,
		registry:   reg,
		emitter:    em,
		dispatcher: disp,
		modules:    make(map[string]Module),
		manifests:  make(map[string]Manifest),
	}
}

// Registry exposes the shared service registry for the hosting process
// (HTTP layer, CLI). Modules themselves receive scopes, not the registry.
func (m *Manager) Registry() *registry.Registry { return m.registry }

// Order returns the resolved initialization order. Empty before
// InitializeAll succeeds.
func (m *Manager) Order() []string {
	return append([]string(nil), m.order...)
}

// Register adds a module to the manager. All modules must be registered
// before InitializeAll; registration order is irrelevant.
func (m *Manager) Register(mod Module) error {
	manifest := mod.Manifest()
	if manifest.Name == "" {
		return fmt.Errorf("module manifest has no name (%T)", mod)
	}
	if _, exists := m.modules[manifest.Name]; exists {
		return &DuplicateModuleError{Module: manifest.Name}
	}
	m.modules[manifest.Name] = mod
	m.manifests[manifest.Name] = manifest
	return nil
}

// RegisterAll registers every module in the map, failing on the first
// duplicate name.
func (m *Manager) RegisterAll(mods map[string]Module) error {
	for _, mod := range mods {
		if err := m.Register(mod); err != nil {
			return err
		}
	}
	return nil
}

// InitializeAll resolves the dependency order and initializes every module
// in it: services into the registry, subscriptions onto the event bus,
// command/query handlers into the dispatcher, then Migrate and Init hooks.
// The first failure aborts boot wrapped in ModuleInitializationError.
func (m *Manager) InitializeAll() error {
	order, err := Resolve(m.manifests)
	if err != nil {
		return err
	}
	m.order = order

	published := m.publishedEvents()

	for _, name := range order {
		start := time.Now()
		if err := m.initializeModule(name, published); err != nil {
			m.log.Error("module initialization failed",
				logger.String("module", name),
				logger.String("phase", "initialize"),
				logger.Duration("duration", time.Since(start)),
				logger.String("error", err.Error()))
			return err
		}
		m.log.Info("module initialized",
			logger.String("module", name),
			logger.String("phase", "initialize"),
			logger.Duration("duration", time.Since(start)))
	}

	return nil
}

// BootAll runs the boot hooks in the same resolved order. It exists as a
// separate pass because a module may need public services of modules that
// appear after it in initialization order; by boot time all of them exist.
func (m *Manager) BootAll() error {
	if m.booted {
		return nil
	}

	for _, name := range m.order {
		bootable, ok := m.modules[name].(Bootable)
		if !ok {
			continue
		}

		start := time.Now()
		if err := bootable.Boot(m.registry.Scope(name)); err != nil {
			wrapped := &ModuleInitializationError{Module: name, Phase: "boot", Err: err}
			m.log.Error("module boot failed",
				logger.String("module", name),
				logger.String("phase", "boot"),
				logger.Duration("duration", time.Since(start)),
				logger.String("error", err.Error()))
			return wrapped
		}
		m.log.Info("module booted",
			logger.String("module", name),
			logger.String("phase", "boot"),
			logger.Duration("duration", time.Since(start)))
	}

	m.booted = true
	return nil
}

// SetupRoutes mounts every routable module on the given group, in resolved
// order. Called by the hosting process after BootAll.
func (m *Manager) SetupRoutes(group *router.RouterGroup) {
	for _, name := range m.order {
		if routable, ok := m.modules[name].(Routable); ok {
			routable.Routes(group)
		}
	}
}

func (m *Manager) initializeModule(name string, published map[string]string) error {
	manifest := m.manifests[name]

	// Services first so the module's own Init can already resolve them.
	for _, svc := range manifest.Services {
		var err error
		switch {
		case svc.Factory != nil:
			err = m.registry.Register(name, svc.Name, svc.Factory, svc.Public)
		default:
			err = m.registry.RegisterInstance(name, svc.Name, svc.Instance, svc.Public)
		}
		if err != nil {
			return &ModuleInitializationError{Module: name, Phase: "initialize", Err: err}
		}
	}

	// Event wiring. A subscription to an event no module declares published
	// is a configuration smell, not a boot failure: the event may simply
	// never fire. Logged so it is visible in production boots.
	for _, sub := range manifest.Subscribes {
		if _, ok := published[sub.Event]; !ok {
			m.log.Warn("subscription to unpublished event",
				logger.String("module", name),
				logger.String("event", sub.Event))
		}
		m.emitter.Listen(sub.Event, name, sub.Listener)
	}

	// Command/query handlers: exactly one handler per message type, so a
	// duplicate here is a hard boot failure.
	for _, binding := range manifest.Commands {
		if err := m.dispatcher.RegisterCommandFor(name, binding.Name, binding.Handler); err != nil {
			return &ModuleInitializationError{Module: name, Phase: "initialize", Err: err}
		}
	}
	for _, binding := range manifest.Queries {
		if err := m.dispatcher.RegisterQueryFor(name, binding.Name, binding.Handler); err != nil {
			return &ModuleInitializationError{Module: name, Phase: "initialize", Err: err}
		}
	}

	mod := m.modules[name]
	if migrator, ok := mod.(Migrator); ok {
		if err := migrator.Migrate(); err != nil {
			return &ModuleInitializationError{Module: name, Phase: "initialize", Err: fmt.Errorf("migrate: %w", err)}
		}
	}
	if initializer, ok := mod.(Initializer); ok {
		if err := initializer.Init(); err != nil {
			return &ModuleInitializationError{Module: name, Phase: "initialize", Err: err}
		}
	}

	return nil
}

// publishedEvents maps every declared event name to its publishing module.
func (m *Manager) publishedEvents() map[string]string {
	published := make(map[string]string)
	for name, manifest := range m.manifests {
		for _, event := range manifest.Publishes {
			published[event] = name
		}
	}
	return published
}
