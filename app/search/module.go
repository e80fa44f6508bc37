package search

import (
	"context"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/app/posts"
	"plinth/core/dispatcher"
	"plinth/core/kernel"
	"plinth/core/router"
)

const ModuleName = "search"

type Module struct {
	DB         *gorm.DB
	Service    *SearchService
	Controller *SearchController
}

// New creates the search module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewSearchService(deps.DB, deps.Logger)
	controller := NewSearchController(deps.Dispatcher)

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
		DependsOn: []string{"posts"},
		Subscribes: []kernel.EventSubscription{
			{Event: posts.PostCreatedEvent, Listener: m.onPostUpserted},
			{Event: posts.PostUpdatedEvent, Listener: m.onPostUpserted},
			{Event: posts.PostDeletedEvent, Listener: m.onPostDeleted},
		},
		Queries: []kernel.QueryBinding{
			{Name: SearchQuery, Handler: m.handleSearch},
		},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.SearchEntry{})
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}

func (m *Module) onPostUpserted(payload any) error {
	post, _ := payload.(*models.Post)
	return m.Service.IndexPost(post)
}

func (m *Module) onPostDeleted(payload any) error {
	post, _ := payload.(*models.Post)
	return m.Service.RemovePost(post)
}

func (m *Module) handleSearch(ctx context.Context, q dispatcher.Query) (any, error) {
	query := q.(*Find)
	return m.Service.Search(query.Term, query.EntityType, query.Limit)
}
