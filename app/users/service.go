package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/config"
	"plinth/core/email"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/storage"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	db            *gorm.DB
	emitter       *emitter.Emitter
	activeStorage *storage.ActiveStorage
	emailSender   email.Sender
	logger        logger.Logger
	cfg           *config.Config
}

func NewUserService(db *gorm.DB, em *emitter.Emitter, activeStorage *storage.ActiveStorage, sender email.Sender, log logger.Logger, cfg *config.Config) *UserService {
	if db == nil {
		panic("db is required")
	}
	if log == nil {
		panic("logger is required")
	}

	if activeStorage != nil {
		activeStorage.RegisterAttachment("user", storage.AttachmentConfig{
			Field:             "avatar",
			Path:              "avatars",
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp"},
			MaxFileSize:       5 << 20, // 5MB
		})
	}

	return &UserService{
		db:            db,
		emitter:       em,
		activeStorage: activeStorage,
		emailSender:   sender,
		logger:        log,
		cfg:           cfg,
	}
}

// Register creates an account with a bcrypt-hashed password, emits
// users.registered and returns a fresh access token.
func (s *UserService) Register(req *models.RegisterUserRequest) (*models.AuthResponse, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("email %s is already registered", req.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", logger.String("error", err.Error()))
		return nil, err
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      "member",
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error("failed to create user", logger.String("error", err.Error()))
		return nil, err
	}

	s.emitter.Emit(UserRegisteredEvent, user)
	s.sendWelcomeEmail(user)

	return s.issueAuth(user)
}

// Login verifies credentials, records the login time and emits
// users.logged_in.
func (s *UserService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Info("invalid password attempt", logger.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	return s.completeLogin(&user)
}

// LoginWithGoogle validates the ID token against the configured audience and
// signs in the matching account. Accounts are not auto-created.
func (s *UserService) LoginWithGoogle(ctx context.Context, rawToken string) (*models.AuthResponse, error) {
	if s.cfg.GoogleAudience == "" {
		return nil, errors.New("google sign-in is not configured")
	}

	payload, err := idtoken.Validate(ctx, rawToken, s.cfg.GoogleAudience)
	if err != nil {
		s.logger.Info("google token validation failed", logger.String("error", err.Error()))
		return nil, ErrInvalidCredentials
	}

	claimedEmail, _ := payload.Claims["email"].(string)
	if claimedEmail == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.Where("email = ?", claimedEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.completeLogin(&user)
}

// GetById gets a user by ID with relationships preloaded
func (s *UserService) GetById(id uint) (*models.User, error) {
	var user models.User
	query := user.Preload(s.db)
	if err := query.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail gets a user by email.
func (s *UserService) GetByEmail(emailAddr string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", emailAddr).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedDefaultAdmin creates the initial admin account on an empty users table.
func (s *UserService) SeedDefaultAdmin() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		FirstName: "Super",
		LastName:  "Admin",
		Email:     "admin@admin.com",
		Password:  string(hashedPassword),
		Role:      "admin",
	}
	return s.db.Create(&admin).Error
}

func (s *UserService) completeLogin(user *models.User) (*models.AuthResponse, error) {
	now := time.Now()
	user.LastLogin = &now
	if err := s.db.Model(user).Update("last_login", now).Error; err != nil {
		s.logger.Error("failed to record login time",
			logger.String("error", err.Error()),
			logger.Uint("user_id", user.Id))
	}

	s.emitter.Emit(UserLoggedInEvent, user)

	return s.issueAuth(user)
}

// issueAuth signs a JWT access token for the user.
func (s *UserService) issueAuth(user *models.User) (*models.AuthResponse, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTExpiryHours) * time.Hour)

	claims := jwt.MapClaims{
		"sub":   user.Id,
		"email": user.Email,
		"role":  user.Role,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("failed to sign access token",
			logger.String("error", err.Error()),
			logger.Uint("user_id", user.Id))
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(),
	}, nil
}

// ParseToken validates a signed access token and returns its claims.
func (s *UserService) ParseToken(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// sendWelcomeEmail is best effort; a missing or failing provider never blocks
// registration.
func (s *UserService) sendWelcomeEmail(user *models.User) {
	if s.emailSender == nil {
		return
	}
	msg := email.Message{
		To:        user.Email,
		Subject:   "Welcome",
		PlainBody: fmt.Sprintf("Hi %s, your account is ready.", user.FirstName),
	}
	if err := s.emailSender.Send(msg); err != nil {
		s.logger.Error("failed to send welcome email",
			logger.String("error", err.Error()),
			logger.Uint("user_id", user.Id))
	}
}
