package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Activity is one row of the audit trail: who did what to which entity.
type Activity struct {
	Id         uint            `json:"id" gorm:"primarykey"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"-" gorm:"index"`
	UserId     uint            `json:"user_id" gorm:"index"`
	EntityType string          `json:"entity_type" gorm:"index"`
	EntityId   uint            `json:"entity_id"`
	Action     string          `json:"action"`
	Metadata   json.RawMessage `json:"metadata"`
}

// TableName returns the table name for the Activity model
func (m *Activity) TableName() string {
	return "activities"
}

// ActivityResponse represents the API response for Activity
type ActivityResponse struct {
	Id         uint            `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	UserId     uint            `json:"user_id"`
	EntityType string          `json:"entity_type"`
	EntityId   uint            `json:"entity_id"`
	Action     string          `json:"action"`
	Metadata   json.RawMessage `json:"metadata"`
}

// ToResponse converts the model to an API response
func (m *Activity) ToResponse() *ActivityResponse {
	if m == nil {
		return nil
	}
	return &ActivityResponse{
		Id:         m.Id,
		CreatedAt:  m.CreatedAt,
		UserId:     m.UserId,
		EntityType: m.EntityType,
		EntityId:   m.EntityId,
		Action:     m.Action,
		Metadata:   m.Metadata,
	}
}
