package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"plinth/core/storage"
	"plinth/core/types"
)

// Post represents a blog post entity
type Post struct {
	Id            uint                `json:"id" gorm:"primarykey"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `json:"deleted_at" gorm:"index"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug" gorm:"uniqueIndex"`
	Content       string              `json:"content"`
	Excerpt       string              `json:"excerpt"`
	AuthorId      uint                `json:"author_id" gorm:"index"`
	Status        string              `json:"status"`
	Category      string              `json:"category"`
	Published     bool                `json:"published"`
	PublishedAt   types.DateTime      `json:"published_at"`
	ScheduledAt   types.DateTime      `json:"scheduled_at"`
	Tags          json.RawMessage     `json:"tags"`
	FeaturedImage *storage.Attachment `json:"featured_image,omitempty" gorm:"foreignKey:ModelId;references:Id"`
}

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// TableName returns the table name for the Post model
func (m *Post) TableName() string {
	return "posts"
}

// GetId returns the Id of the model
func (m *Post) GetId() uint {
	return m.Id
}

// GetModelName returns the model name
func (m *Post) GetModelName() string {
	return "post"
}

// CreatePostRequest represents the request payload for creating a Post
type CreatePostRequest struct {
	Title       string          `json:"title" validate:"required"`
	Slug        string          `json:"slug"`
	Content     string          `json:"content"`
	Excerpt     string          `json:"excerpt"`
	AuthorId    uint            `json:"author_id" validate:"required"`
	Status      string          `json:"status"`
	Category    string          `json:"category"`
	Published   bool            `json:"published"`
	PublishedAt types.DateTime  `json:"published_at"`
	ScheduledAt types.DateTime  `json:"scheduled_at"`
	Tags        json.RawMessage `json:"tags"`
}

// UpdatePostRequest represents the request payload for updating a Post
type UpdatePostRequest struct {
	Title       string          `json:"title,omitempty"`
	Slug        string          `json:"slug,omitempty"`
	Content     string          `json:"content,omitempty"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Status      string          `json:"status,omitempty"`
	Category    string          `json:"category,omitempty"`
	Published   *bool           `json:"published,omitempty"`
	PublishedAt types.DateTime  `json:"published_at,omitempty"`
	ScheduledAt types.DateTime  `json:"scheduled_at,omitempty"`
	Tags        json.RawMessage `json:"tags,omitempty"`
}

// PostResponse represents the API response for Post
type PostResponse struct {
	Id            uint                `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Content       string              `json:"content"`
	Excerpt       string              `json:"excerpt"`
	AuthorId      uint                `json:"author_id"`
	Status        string              `json:"status"`
	Category      string              `json:"category"`
	Published     bool                `json:"published"`
	PublishedAt   types.DateTime      `json:"published_at"`
	ScheduledAt   types.DateTime      `json:"scheduled_at"`
	Tags          json.RawMessage     `json:"tags"`
	FeaturedImage *storage.Attachment `json:"featured_image,omitempty"`
}

// PostListResponse represents the response for list operations (no relationships for fast listing)
type PostListResponse struct {
	Id          uint           `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Excerpt     string         `json:"excerpt"`
	AuthorId    uint           `json:"author_id"`
	Status      string         `json:"status"`
	Category    string         `json:"category"`
	Published   bool           `json:"published"`
	PublishedAt types.DateTime `json:"published_at"`
}

// ToResponse converts the model to an API response
func (m *Post) ToResponse() *PostResponse {
	if m == nil {
		return nil
	}
	response := &PostResponse{
		Id:          m.Id,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Title:       m.Title,
		Slug:        m.Slug,
		Content:     m.Content,
		Excerpt:     m.Excerpt,
		AuthorId:    m.AuthorId,
		Status:      m.Status,
		Category:    m.Category,
		Published:   m.Published,
		PublishedAt: m.PublishedAt,
		ScheduledAt: m.ScheduledAt,
		Tags:        m.Tags,
	}
	if m.FeaturedImage != nil {
		response.FeaturedImage = m.FeaturedImage
	}
	return response
}

// ToListResponse converts the model to a list response
func (m *Post) ToListResponse() *PostListResponse {
	if m == nil {
		return nil
	}
	return &PostListResponse{
		Id:          m.Id,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Title:       m.Title,
		Slug:        m.Slug,
		Excerpt:     m.Excerpt,
		AuthorId:    m.AuthorId,
		Status:      m.Status,
		Category:    m.Category,
		Published:   m.Published,
		PublishedAt: m.PublishedAt,
	}
}

// Preload preloads all the model's relationships
func (m *Post) Preload(db *gorm.DB) *gorm.DB {
	return db.Preload("FeaturedImage", "model_type = ?", m.GetModelName())
}
