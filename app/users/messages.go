package users

import "plinth/app/models"

// Command and event names owned by the users module.
const (
	RegisterCommand    = "users.register"
	LoginCommand       = "users.login"
	GoogleLoginCommand = "users.login_google"

	UserRegisteredEvent = "users.registered"
	UserLoggedInEvent   = "users.logged_in"
)

// Register creates a new account. The handler fills Result.
type Register struct {
	Req    *models.RegisterUserRequest
	Result *models.AuthResponse
}

func (*Register) CommandName() string { return RegisterCommand }

// Login authenticates by email and password. The handler fills Result.
type Login struct {
	Req    *models.LoginRequest
	Result *models.AuthResponse
}

func (*Login) CommandName() string { return LoginCommand }

// GoogleLogin authenticates with a Google ID token. The handler fills Result.
type GoogleLogin struct {
	Req    *models.GoogleLoginRequest
	Result *models.AuthResponse
}

func (*GoogleLogin) CommandName() string { return GoogleLoginCommand }
