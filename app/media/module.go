package media

import (
	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/kernel"
	"plinth/core/router"
)

const ModuleName = "media"

// ServiceName is the public media library service.
const ServiceName = "media.service"

type Module struct {
	DB         *gorm.DB
	Service    *MediaService
	Controller *MediaController
}

// New creates the media module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewMediaService(deps.DB, deps.Emitter, deps.Storage, deps.Logger)
	controller := NewMediaController(service)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Manifest() kernel.Manifest {
	return kernel.Manifest{
		Name:    ModuleName,
		Version: "1.0.0",
		Services: []kernel.ServiceProvider{
			{Name: ServiceName, Public: true, Instance: m.Service},
		},
		Publishes: []string{MediaUploadedEvent},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Media{})
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}
