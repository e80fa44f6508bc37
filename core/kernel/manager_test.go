package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plinth/core/dispatcher"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/registry"
)

// fakeModule is a configurable test double for lifecycle tests.
type fakeModule struct {
	manifest Manifest
	initFn   func() error
	bootFn   func(scope *registry.Scope) error
}

func (m *fakeModule) Manifest() Manifest { return m.manifest }

func (m *fakeModule) Init() error {
	if m.initFn == nil {
		return nil
	}
	return m.initFn()
}

func (m *fakeModule) Boot(scope *registry.Scope) error {
	if m.bootFn == nil {
		return nil
	}
	return m.bootFn(scope)
}

func newTestManager() *Manager {
	return NewManager(logger.NewNop(), registry.New(), emitter.New(), dispatcher.New())
}

func TestManagerInitializesInDependencyOrder(t *testing.T) {
	var got []string
	record := func(name string) func() error {
		return func() error {
			got = append(got, name)
			return nil
		}
	}

	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "security", DependsOn: []string{"user"}},
		initFn:   record("security"),
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "logging"},
		initFn:   record("logging"),
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "user", DependsOn: []string{"logging"}},
		initFn:   record("user"),
	}))

	require.NoError(t, m.InitializeAll())
	assert.Equal(t, []string{"logging", "user", "security"}, got)
	assert.Equal(t, []string{"logging", "user", "security"}, m.Order())
}

func TestManagerRejectsDuplicateModule(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{manifest: Manifest{Name: "users"}}))

	err := m.Register(&fakeModule{manifest: Manifest{Name: "users"}})
	var dup *DuplicateModuleError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "users", dup.Module)
}

func TestManagerInitFailureAbortsBoot(t *testing.T) {
	boom := errors.New("connection refused")
	var laterRan bool

	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "broken"},
		initFn:   func() error { return boom },
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "later", DependsOn: []string{"broken"}},
		initFn: func() error {
			laterRan = true
			return nil
		},
	}))

	err := m.InitializeAll()
	require.Error(t, err)
	assert.False(t, laterRan, "modules after the failure must not initialize")

	var initErr *ModuleInitializationError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "broken", initErr.Module)
	assert.Equal(t, "initialize", initErr.Phase)
	assert.True(t, errors.Is(err, boom), "original cause must survive wrapping")
}

func TestManagerRegistersServicesWithVisibility(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name: "user",
			Services: []ServiceProvider{
				{Name: "user.service", Public: true, Instance: "the service"},
				{Name: "user.lookup", Public: false, Factory: func() (any, error) {
					return "the lookup", nil
				}},
			},
		},
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "billing", DependsOn: []string{"user"}},
	}))
	require.NoError(t, m.InitializeAll())

	reg := m.Registry()

	// Public services resolve from anywhere.
	svc, err := reg.ResolvePublic("user.service")
	require.NoError(t, err)
	assert.Equal(t, "the service", svc)

	// The owner reaches its private service through its scope.
	own, err := reg.Scope("user").Get("user.lookup")
	require.NoError(t, err)
	assert.Equal(t, "the lookup", own)

	// Another module's scope cannot.
	_, err = reg.Scope("billing").Get("user.lookup")
	var notPublic *registry.ServiceNotPublicError
	require.True(t, errors.As(err, &notPublic))
	assert.Equal(t, "user.lookup", notPublic.Service)
	assert.Equal(t, "user", notPublic.Owner)
}

func TestManagerDuplicateServiceAbortsBoot(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:     "first",
			Services: []ServiceProvider{{Name: "shared.cache", Instance: 1}},
		},
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:      "second",
			DependsOn: []string{"first"},
			Services:  []ServiceProvider{{Name: "shared.cache", Instance: 2}},
		},
	}))

	err := m.InitializeAll()
	require.Error(t, err)

	var dup *registry.DuplicateServiceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "shared.cache", dup.Service)
	assert.Equal(t, "first", dup.Owner)
	assert.Equal(t, "second", dup.Claimant)
}

func TestManagerWiresSubscriptionsInResolvedOrder(t *testing.T) {
	var got []string
	listener := func(name string) emitter.Listener {
		return func(payload any) error {
			got = append(got, name)
			return nil
		}
	}

	em := emitter.New()
	m := NewManager(logger.NewNop(), registry.New(), em, dispatcher.New())

	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:       "audit",
			DependsOn:  []string{"publisher"},
			Subscribes: []EventSubscription{{Event: "thing.created", Listener: listener("audit")}},
		},
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:      "publisher",
			Publishes: []string{"thing.created"},
			Subscribes: []EventSubscription{
				{Event: "thing.created", Listener: listener("publisher")},
			},
		},
	}))
	require.NoError(t, m.InitializeAll())

	em.Emit("thing.created", nil)
	// publisher initializes before audit, so its listener runs first.
	assert.Equal(t, []string{"publisher", "audit"}, got)
}

func TestManagerUnpublishedSubscriptionIsNonFatal(t *testing.T) {
	em := emitter.New()
	m := NewManager(logger.NewNop(), registry.New(), em, dispatcher.New())

	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name: "listener",
			Subscribes: []EventSubscription{
				{Event: "nobody.publishes.this", Listener: func(any) error { return nil }},
			},
		},
	}))

	// Boot succeeds and the listener is still wired; the event may be
	// published dynamically even though no manifest declares it.
	require.NoError(t, m.InitializeAll())
	assert.Equal(t, 1, em.ListenerCount("nobody.publishes.this"))
}

func TestManagerRegistersHandlersAndRejectsDuplicates(t *testing.T) {
	disp := dispatcher.New()
	m := NewManager(logger.NewNop(), registry.New(), emitter.New(), disp)

	handler := func(ctx context.Context, cmd dispatcher.Command) error { return nil }

	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:     "orders",
			Commands: []CommandBinding{{Name: "orders.place", Handler: handler}},
		},
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:      "rival",
			DependsOn: []string{"orders"},
			Commands:  []CommandBinding{{Name: "orders.place", Handler: handler}},
		},
	}))

	err := m.InitializeAll()
	require.Error(t, err)

	var already *dispatcher.HandlerAlreadyRegisteredError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, "orders.place", already.MessageType)
	assert.Equal(t, "orders", already.Owner)
}

func TestManagerBootRunsAfterAllInitialized(t *testing.T) {
	// consumer initializes before provider (lexical order, no deps), yet its
	// Boot hook must see provider's public service.
	m := newTestManager()

	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "a-consumer"},
		bootFn: func(scope *registry.Scope) error {
			_, err := scope.Get("z.service")
			return err
		},
	}))
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{
			Name:     "z-provider",
			Services: []ServiceProvider{{Name: "z.service", Public: true, Instance: "ok"}},
		},
	}))

	require.NoError(t, m.InitializeAll())
	require.NoError(t, m.BootAll())
}

func TestManagerBootFailureIsWrappedWithPhase(t *testing.T) {
	cause := errors.New("missing collaborator")

	m := newTestManager()
	require.NoError(t, m.Register(&fakeModule{
		manifest: Manifest{Name: "fragile"},
		bootFn:   func(scope *registry.Scope) error { return cause },
	}))
	require.NoError(t, m.InitializeAll())

	err := m.BootAll()
	require.Error(t, err)

	var initErr *ModuleInitializationError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "fragile", initErr.Module)
	assert.Equal(t, "boot", initErr.Phase)
	assert.True(t, errors.Is(err, cause))
}

func TestManagerRejectsUnnamedModule(t *testing.T) {
	m := newTestManager()
	err := m.Register(&fakeModule{manifest: Manifest{}})
	require.Error(t, err)
}
