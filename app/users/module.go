package users

import (
	"context"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/dispatcher"
	"plinth/core/kernel"
	"plinth/core/router"
)

const ModuleName = "users"

// Service names contributed to the registry.
const (
	ServiceName = "users.service" // public
	LookupName  = "users.lookup"  // private
)

type Module struct {
	DB         *gorm.DB
	Service    *UserService
	Controller *UserController
}

// New creates the users module with all dependencies.
func New(deps kernel.Dependencies) *Module {
	service := NewUserService(deps.DB, deps.Emitter, deps.Storage, deps.EmailSender, deps.Logger, deps.Config)
	controller := NewUserController(service, deps.Dispatcher)

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
			{Name: LookupName, Public: false, Factory: func() (any, error) {
				return NewUserLookup(m.DB), nil
			}},
		},
		Publishes: []string{UserRegisteredEvent, UserLoggedInEvent},
		Commands: []kernel.CommandBinding{
			{Name: RegisterCommand, Handler: m.handleRegister},
			{Name: LoginCommand, Handler: m.handleLogin},
			{Name: GoogleLoginCommand, Handler: m.handleGoogleLogin},
		},
	}
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.User{})
}

func (m *Module) Init() error {
	return m.Service.SeedDefaultAdmin()
}

// Routes registers the module routes
func (m *Module) Routes(group *router.RouterGroup) {
	m.Controller.Routes(group)
}

func (m *Module) handleRegister(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*Register)
	result, err := m.Service.Register(c.Req)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}

func (m *Module) handleLogin(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*Login)
	result, err := m.Service.Login(c.Req)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}

func (m *Module) handleGoogleLogin(ctx context.Context, cmd dispatcher.Command) error {
	c := cmd.(*GoogleLogin)
	result, err := m.Service.LoginWithGoogle(ctx, c.Req.IDToken)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}
