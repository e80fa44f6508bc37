package activities

import (
	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/app/posts"
	"plinth/app/users"
	"plinth/core/kernel"
	"plinth/core/router"
)

const ModuleName = "activities"

type Module struct {
	DB         *gorm.DB
	Service    *ActivityService
	Controller *ActivityController
}

// New creates the activities module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewActivityService(deps.DB, deps.Logger)
	controller := NewActivityController(service)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Manifest() kernel.Manifest {
	return kernel.Manifest{
		Name:      ModuleName,
		Version:   "1.0.0",
		DependsOn: []string{"users", "posts"},
		Subscribes: []kernel.EventSubscription{
			{Event: users.UserRegisteredEvent, Listener: m.onUserEvent("registered")},
			{Event: users.UserLoggedInEvent, Listener: m.onUserEvent("logged_in")},
			{Event: posts.PostCreatedEvent, Listener: m.onPostEvent("created")},
			{Event: posts.PostUpdatedEvent, Listener: m.onPostEvent("updated")},
			{Event: posts.PostDeletedEvent, Listener: m.onPostEvent("deleted")},
		},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Activity{})
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}

func (m *Module) onUserEvent(action string) func(payload any) error {
	return func(payload any) error {
		user, _ := payload.(*models.User)
		return m.Service.RecordUserAction(user, action)
	}
}

func (m *Module) onPostEvent(action string) func(payload any) error {
	return func(payload any) error {
		post, _ := payload.(*models.Post)
		return m.Service.RecordPostAction(post, action)
	}
}
