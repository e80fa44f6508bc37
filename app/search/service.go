package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plinth/app/models"
	"plinth/core/logger"
)

type SearchService struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewSearchService(db *gorm.DB, log logger.Logger) *SearchService {
	return &SearchService{
		DB:     db,
		Logger: log,
	}
}

// Index upserts the search entry for one entity.
func (s *SearchService) Index(entityType string, entityId uint, title, content, url string) error {
	entry := &models.SearchEntry{
		EntityType: entityType,
		EntityId:   entityId,
		Title:      title,
		Content:    content,
		URL:        url,
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_type"}, {Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "url", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		s.Logger.Error("failed to index entity",
			logger.String("error", err.Error()),
			logger.String("entity_type", entityType),
			logger.Uint("entity_id", entityId))
		return err
	}

	return nil
}

// Remove deletes the search entry for one entity.
func (s *SearchService) Remove(entityType string, entityId uint) error {
	return s.DB.
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Delete(&models.SearchEntry{}).Error
}

// IndexPost maps a post onto its search entry. Unpublished posts are removed
// from the index rather than stored.
func (s *SearchService) IndexPost(post *models.Post) error {
	if post == nil {
		return fmt.Errorf("nil post payload")
	}
	if !post.Published {
		return s.Remove("post", post.Id)
	}
	return s.Index("post", post.Id, post.Title, post.Content, "/posts/slug/"+post.Slug)
}

// RemovePost drops a deleted post from the index.
func (s *SearchService) RemovePost(post *models.Post) error {
	if post == nil {
		return fmt.Errorf("nil post payload")
	}
	return s.Remove("post", post.Id)
}

// Search runs a case-insensitive term match over titles and content.
func (s *SearchService) Search(term, entityType string, limit int) ([]*models.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	query := s.DB.Model(&models.SearchEntry{}).
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var entries []*models.SearchEntry
	if err := query.Order("updated_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		s.Logger.Error("search query failed",
			logger.String("error", err.Error()),
			logger.String("term", term))
		return nil, err
	}

	results := make([]*models.SearchResult, len(entries))
	for i, entry := range entries {
		results[i] = &models.SearchResult{
			EntityType: entry.EntityType,
			EntityId:   entry.EntityId,
			Title:      entry.Title,
			Excerpt:    excerpt(entry.Content, 160),
			URL:        entry.URL,
		}
	}

	return results, nil
}

// excerpt truncates content on a rune boundary.
func excerpt(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
