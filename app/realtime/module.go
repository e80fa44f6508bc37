package realtime

import (
	"plinth/app/media"
	"plinth/app/posts"
	"plinth/app/users"
	"plinth/core/kernel"
	"plinth/core/router"
	"plinth/core/websocket"
)

const ModuleName = "realtime"

// HubName is the public websocket hub service.
const HubName = "realtime.hub"

// Module owns the websocket hub and relays domain events to connected
// clients. It is broadcast-only: clients never publish back into the bus.
type Module struct {
	Hub     *websocket.Hub
	enabled bool
}

// New creates the realtime module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	return &Module{
		Hub:     websocket.NewHub(deps.Logger),
		enabled: deps.Config == nil || deps.Config.WebSocketEnabled,
	}
}

func (m *Module) Manifest() kernel.Manifest {
	manifest := kernel.Manifest{
		Name:      ModuleName,
		Version:   "1.0.0",
		DependsOn: []string{"users", "posts", "media"},
		Services: []kernel.ServiceProvider{
			{Name: HubName, Public: true, Instance: m.Hub},
		},
	}
	if !m.enabled {
		return manifest
	}

	manifest.Subscribes = []kernel.EventSubscription{
		{Event: users.UserRegisteredEvent, Listener: m.relay(users.UserRegisteredEvent)},
		{Event: posts.PostCreatedEvent, Listener: m.relay(posts.PostCreatedEvent)},
		{Event: posts.PostUpdatedEvent, Listener: m.relay(posts.PostUpdatedEvent)},
		{Event: posts.PostDeletedEvent, Listener: m.relay(posts.PostDeletedEvent)},
		{Event: media.MediaUploadedEvent, Listener: m.relay(media.MediaUploadedEvent)},
	}
	return manifest
}

// Routes registers the websocket upgrade endpoint
func (m *Module) Routes(group *router.RouterGroup) {
	if !m.enabled {
		return
	}
	m.Hub.Routes(group)
}

func (m *Module) relay(event string) func(payload any) error {
	return func(payload any) error {
		m.Hub.Broadcast(event, payload)
		return nil
	}
}
