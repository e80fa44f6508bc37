package users

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plinth/app/models"
	"plinth/core/config"
	"plinth/core/emitter"
	"plinth/core/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func newTestService(t *testing.T, em *emitter.Emitter) *UserService {
	t.Helper()
	if em == nil {
		em = emitter.New()
	}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1}
	return NewUserService(newTestDB(t), em, nil, nil, logger.NewNop(), cfg)
}

func TestRegisterCreatesAccount(t *testing.T) {
	em := emitter.New()
	var registered *models.User
	em.On(UserRegisteredEvent, func(payload any) error {
		registered = payload.(*models.User)
		return nil
	})

	svc := newTestService(t, em)
	auth, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "difference-engine",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "ada@example.com", auth.User.Email)
	assert.Equal(t, "member", auth.User.Role)

	require.NotNil(t, registered, "users.registered must fire")
	assert.Equal(t, auth.User.Id, registered.Id)

	// Password is stored hashed, never verbatim.
	stored, err := svc.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "difference-engine", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t, nil)
	req := &models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	}

	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLogin(t *testing.T) {
	em := emitter.New()
	var loggedIn bool
	em.On(UserLoggedInEvent, func(any) error {
		loggedIn = true
		return nil
	})

	svc := newTestService(t, em)
	_, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	})
	require.NoError(t, err)

	auth, err := svc.Login(&models.LoginRequest{
		Email:    "ada@example.com",
		Password: "difference-engine",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotNil(t, auth.User.LastLogin)
	assert.True(t, loggedIn, "users.logged_in must fire")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	})
	require.NoError(t, err)

	_, err = svc.Login(&models.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Login(&models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedDefaultAdmin(t *testing.T) {
	svc := newTestService(t, nil)

	require.NoError(t, svc.SeedDefaultAdmin())

	admin, err := svc.GetByEmail("admin@admin.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	// Idempotent: a second run must not add another account.
	require.NoError(t, svc.SeedDefaultAdmin())
	var count int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeedDefaultAdminSkipsNonEmptyTable(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SeedDefaultAdmin())
	_, err = svc.GetByEmail("admin@admin.com")
	assert.Error(t, err, "seeding must not run once users exist")
}

func TestParseTokenRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	auth, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	})
	require.NoError(t, err)

	claims, err := svc.ParseToken(auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims["email"])

	_, err = svc.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestUserLookup(t *testing.T) {
	svc := newTestService(t, nil)
	auth, err := svc.Register(&models.RegisterUserRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "difference-engine",
	})
	require.NoError(t, err)

	lookup := NewUserLookup(svc.db)

	exists, err := lookup.Exists(auth.User.Id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = lookup.Exists(9999)
	require.NoError(t, err)
	assert.False(t, exists)

	slim, err := lookup.FindByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", slim.FirstName)
}
