package kernel

import (
	"gorm.io/gorm"

	"plinth/core/config"
	"plinth/core/dispatcher"
	"plinth/core/email"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/registry"
	"plinth/core/router"
	"plinth/core/storage"
)

// Module is a self-contained feature unit. Its Manifest declares everything
// the kernel needs to compose it with other modules: dependencies, service
// factories and their visibility, published events, event subscriptions and
// command/query handler bindings. Manifests are built once at construction
// and must not change afterwards.
type Module interface {
	Manifest() Manifest
}

// Initializer is implemented by modules with an initialization step. It
// runs in resolved dependency order, after the module's services, events
// and handlers have been wired. A returned error aborts the entire boot.
type Initializer interface {
	Init() error
}

// Migrator is implemented by modules that own database tables. Migrate runs
// immediately before Init.
type Migrator interface {
	Migrate() error
}

// Bootable is implemented by modules that need cross-module wiring. Boot
// runs as a second pass after every module has initialized, so public
// services of all modules are resolvable through the scope — including
// services of modules that initialize later in the resolved order.
type Bootable interface {
	Boot(scope *registry.Scope) error
}

// Routable is implemented by modules exposing HTTP endpoints.
type Routable interface {
	Routes(group *router.RouterGroup)
}

// ServiceProvider declares one service a module contributes to the shared
// registry. Exactly one of Factory or Instance must be set. Public services
// are consumable by other modules; private ones only by their owner.
type ServiceProvider struct {
	Name     string
	Public   bool
	Factory  registry.Factory
	Instance any
}

// EventSubscription binds a listener to a named domain event.
type EventSubscription struct {
	Event    string
	Listener emitter.Listener
}

// CommandBinding binds the module's handler to a command type.
type CommandBinding struct {
	Name    string
	Handler dispatcher.CommandHandler
}

// QueryBinding binds the module's handler to a query type.
type QueryBinding struct {
	Name    string
	Handler dispatcher.QueryHandler
}

// Manifest is a module's static declaration.
type Manifest struct {
	Name       string
	Version    string
	DependsOn  []string
	Services   []ServiceProvider
	Publishes  []string
	Subscribes []EventSubscription
	Commands   []CommandBinding
	Queries    []QueryBinding
}

// Dependencies carries the shared infrastructure handed to every module
// constructor. Cross-module services are not in here on purpose; those are
// resolved through the registry scope during Boot.
type Dependencies struct {
	DB          *gorm.DB
	Router      *router.RouterGroup
	Logger      logger.Logger
	Emitter     *emitter.Emitter
	Dispatcher  *dispatcher.Dispatcher
	Storage     *storage.ActiveStorage
	EmailSender email.Sender
	Config      *config.Config
}

// DefaultModule provides a no-op Manifest base so simple modules only
// declare what they use.
type DefaultModule struct{}

func (DefaultModule) Manifest() Manifest { return Manifest{} }
