package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is an in-app message produced by domain events.
type Notification struct {
	Id        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	UserId    uint           `json:"user_id" gorm:"index"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Read      bool           `json:"read" gorm:"index"`
}

// TableName returns the table name for the Notification model
func (m *Notification) TableName() string {
	return "notifications"
}

// NotificationResponse represents the API response for Notification
type NotificationResponse struct {
	Id        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserId    uint      `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
}

// ToResponse converts the model to an API response
func (m *Notification) ToResponse() *NotificationResponse {
	if m == nil {
		return nil
	}
	return &NotificationResponse{
		Id:        m.Id,
		CreatedAt: m.CreatedAt,
		UserId:    m.UserId,
		Type:      m.Type,
		Title:     m.Title,
		Body:      m.Body,
		Read:      m.Read,
	}
}
