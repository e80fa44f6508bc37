package posts

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/dispatcher"
	"plinth/core/kernel"
	"plinth/core/registry"
	"plinth/core/router"
)

const ModuleName = "posts"

// ServiceName is the public CRUD service other modules may consume.
const ServiceName = "posts.service"

type Module struct {
	DB         *gorm.DB
	Service    *PostService
	Controller *PostController
}

// New creates the posts module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewPostService(deps.DB, deps.Emitter, deps.Storage, deps.Logger)
	controller := NewPostController(service, deps.Dispatcher)

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
		DependsOn: []string{"users"},
		Services: []kernel.ServiceProvider{
			{Name: ServiceName, Public: true, Instance: m.Service},
		},
		Publishes: []string{PostCreatedEvent, PostUpdatedEvent, PostDeletedEvent},
		Commands: []kernel.CommandBinding{
			{Name: CreateCommand, Handler: m.handleCreate},
			{Name: UpdateCommand, Handler: m.handleUpdate},
			{Name: DeleteCommand, Handler: m.handleDelete},
		},
		Queries: []kernel.QueryBinding{
			{Name: GetQuery, Handler: m.handleGet},
			{Name: ListQuery, Handler: m.handleList},
		},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Post{})
}

// Boot resolves the users service so creates can verify authors exist.
func (m *Module) Boot(scope *registry.Scope) error {
	svc, err := scope.Get("users.service")
	if err != nil {
		return err
	}
	authors, ok := svc.(AuthorDirectory)
	if !ok {
		return fmt.Errorf("users.service does not provide author lookups (%T)", svc)
	}
	m.Service.SetAuthorDirectory(authors)
	return nil
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}

func (m *Module) handleCreate(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*Create)
	item, err := m.Service.Create(c.Req)
	if err != nil {
		return err
	}
	c.Result = item.ToResponse()
	return nil
}

func (m *Module) handleUpdate(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*Update)
	item, err := m.Service.Update(c.Id, c.Req)
	if err != nil {
		return err
	}
	c.Result = item.ToResponse()
	return nil
}

func (m *Module) handleDelete(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*Delete)
	return m.Service.Delete(c.Id)
}

func (m *Module) handleGet(ctx context.Context, q dispatcher.Query) (any, error) {
	query := q.(*Get)
	item, err := m.Service.GetById(query.Id)
	if err != nil {
		return nil, err
	}
	return item.ToResponse(), nil
}

func (m *Module) handleList(ctx context.Context, q dispatcher.Query) (any, error) {
	query := q.(*List)
	return m.Service.GetAll(query.Page, query.Limit, query.SortBy, query.SortOrder)
}
