package notifications

import (
	"context"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/app/posts"
	"plinth/app/users"
	"plinth/core/dispatcher"
	"plinth/core/kernel"
	"plinth/core/router"
)

const ModuleName = "notifications"

type Module struct {
	DB         *gorm.DB
	Service    *NotificationService
	Controller *NotificationController
}

// New creates the notifications module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewNotificationService(deps.DB, deps.Logger)
	controller := NewNotificationController(service, deps.Dispatcher)

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
			{Event: users.UserRegisteredEvent, Listener: m.onUserRegistered},
			{Event: posts.PostCreatedEvent, Listener: m.onPostCreated},
		},
		Queries: []kernel.QueryBinding{
			{Name: ListQuery, Handler: m.handleList},
		},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Notification{})
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}

func (m *Module) onUserRegistered(payload any) error {
	user, _ := payload.(*models.User)
	return m.Service.NotifyUserRegistered(user)
}

func (m *Module) onPostCreated(payload any) error {
	post, _ := payload.(*models.Post)
	return m.Service.NotifyPostCreated(post)
}

func (m *Module) handleList(ctx context.Context, q dispatcher.Query) (any, error) {
	query := q.(*List)
	items, err := m.Service.List(query.UserId, query.UnreadOnly, query.Limit)
	if err != nil {
		return nil, err
	}
	return responses(items), nil
}
