package models

import (
	"time"

	"gorm.io/gorm"

	"plinth/core/storage"
)

// User represents an account that can authenticate against the platform.
type User struct {
	Id        uint                `json:"id" gorm:"primarykey"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	DeletedAt gorm.DeletedAt      `json:"deleted_at" gorm:"index"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Email     string              `json:"email" gorm:"uniqueIndex"`
	Password  string              `json:"-"`
	Role      string              `json:"role"`
	LastLogin *time.Time          `json:"last_login,omitempty"`
	Avatar    *storage.Attachment `json:"avatar,omitempty" gorm:"foreignKey:ModelId;references:Id"`
}

// TableName returns the table name for the User model
func (m *User) TableName() string {
	return "users"
}

// GetId returns the Id of the model
func (m *User) GetId() uint {
	return m.Id
}

// GetModelName returns the model name
func (m *User) GetModelName() string {
	return "user"
}

// RegisterUserRequest represents the request payload for registering a User
type RegisterUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request payload for a credentials login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest represents the request payload for a Google ID-token login
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// UserResponse represents the API response for User
type UserResponse struct {
	Id        uint                `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Email     string              `json:"email"`
	Role      string              `json:"role"`
	LastLogin *time.Time          `json:"last_login,omitempty"`
	Avatar    *storage.Attachment `json:"avatar,omitempty"`
}

// AuthResponse is returned by register and login operations.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        *UserResponse `json:"user"`
}

// UserModelResponse represents a simplified response when this model is part of other entities
type UserModelResponse struct {
	Id        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ToResponse converts the model to an API response
func (m *User) ToResponse() *UserResponse {
	if m == nil {
		return nil
	}
	response := &UserResponse{
		Id:        m.Id,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Role:      m.Role,
		LastLogin: m.LastLogin,
	}
	if m.Avatar != nil {
		response.Avatar = m.Avatar
	}
	return response
}

// ToModelResponse converts the model to a simplified response for when it's part of other entities
func (m *User) ToModelResponse() *UserModelResponse {
	if m == nil {
		return nil
	}
	return &UserModelResponse{
		Id:        m.Id,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
	}
}

// Preload preloads all the model's relationships
func (m *User) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Avatar", "model_type = ?", m.GetModelName())
}
