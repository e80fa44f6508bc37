package models

import (
	"time"

	"gorm.io/gorm"
)

// SearchEntry is a denormalized row of the search index, kept in sync with
// its source entity by event subscriptions.
type SearchEntry struct {
	Id         uint           `json:"id" gorm:"primarykey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	EntityType string         `json:"entity_type" gorm:"index:idx_search_entity,unique"`
	EntityId   uint           `json:"entity_id" gorm:"index:idx_search_entity,unique"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	URL        string         `json:"url"`
}

// TableName returns the table name for the SearchEntry model
func (m *SearchEntry) TableName() string {
	return "search_entries"
}

// SearchResult represents one hit in a search response.
type SearchResult struct {
	EntityType string `json:"entity_type"`
	EntityId   uint   `json:"entity_id"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	URL        string `json:"url"`
}
