package models

import (
	"time"

	"gorm.io/gorm"

	"plinth/core/storage"
)

// Media is a standalone uploaded file managed by the media library.
type Media struct {
	Id        uint                `json:"id" gorm:"primarykey"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	DeletedAt gorm.DeletedAt      `json:"-" gorm:"index"`
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	UserId    uint                `json:"user_id" gorm:"index"`
	File      *storage.Attachment `json:"file,omitempty" gorm:"foreignKey:ModelId;references:Id"`
}

// TableName returns the table name for the Media model
func (m *Media) TableName() string {
	return "media"
}

// GetId returns the Id of the model
func (m *Media) GetId() uint {
	return m.Id
}

// GetModelName returns the model name
func (m *Media) GetModelName() string {
	return "media"
}

// MediaResponse represents the API response for Media
type MediaResponse struct {
	Id        uint                `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	UserId    uint                `json:"user_id"`
	File      *storage.Attachment `json:"file,omitempty"`
}

// ToResponse converts the model to an API response
func (m *Media) ToResponse() *MediaResponse {
	if m == nil {
		return nil
	}
	return &MediaResponse{
		Id:        m.Id,
		CreatedAt: m.CreatedAt,
		Name:      m.Name,
		Type:      m.Type,
		UserId:    m.UserId,
		File:      m.File,
	}
}

// Preload preloads all the model's relationships
func (m *Media) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("File", "model_type = ?", m.GetModelName())
}
