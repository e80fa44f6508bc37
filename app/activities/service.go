package activities

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/logger"
)

type ActivityService struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewActivityService(db *gorm.DB, log logger.Logger) *ActivityService {
	return &ActivityService{
		DB:     db,
		Logger: log,
	}
}

// Record appends one audit row.
func (s *ActivityService) Record(userId uint, entityType string, entityId uint, action string, metadata any) error {
	var raw json.RawMessage
	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
		raw = encoded
	}

	activity := &models.Activity{
		UserId:     userId,
		EntityType: entityType,
		EntityId:   entityId,
		Action:     action,
		Metadata:   raw,
	}

	if err := s.DB.Create(activity).Error; err != nil {
		s.Logger.Error("failed to record activity",
			logger.String("error", err.Error()),
			logger.String("entity_type", entityType),
			logger.String("action", action))
		return err
	}

	return nil
}

// RecordUserAction captures an event about a user account.
func (s *ActivityService) RecordUserAction(user *models.User, action string) error {
	if user == nil {
		return fmt.Errorf("nil user payload for action %q", action)
	}
	return s.Record(user.Id, "user", user.Id, action, map[string]any{
		"email": user.Email,
	})
}

// RecordPostAction captures an event about a post.
func (s *ActivityService) RecordPostAction(post *models.Post, action string) error {
	if post == nil {
		return fmt.Errorf("nil post payload for action %q", action)
	}
	return s.Record(post.AuthorId, "post", post.Id, action, map[string]any{
		"title": post.Title,
		"slug":  post.Slug,
	})
}

// GetRecent returns the newest audit rows, newest first.
func (s *ActivityService) GetRecent(limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	var items []*models.Activity
	err := s.DB.Model(&models.Activity{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to get recent activities", logger.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// GetByEntity returns the audit trail for one entity.
func (s *ActivityService) GetByEntity(entityType string, entityId uint) ([]*models.Activity, error) {
	var items []*models.Activity
	err := s.DB.Model(&models.Activity{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
