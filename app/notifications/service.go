package notifications

import (
	"fmt"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/logger"
)

type NotificationService struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewNotificationService(db *gorm.DB, log logger.Logger) *NotificationService {
	return &NotificationService{
		DB:     db,
		Logger: log,
	}
}

// Create stores one notification row.
func (s *NotificationService) Create(userId uint, notifType, title, body string) error {
	notification := &models.Notification{
		UserId: userId,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	if err := s.DB.Create(notification).Error; err != nil {
		s.Logger.Error("failed to create notification",
			logger.String("error", err.Error()),
			logger.String("type", notifType))
		return err
	}

	return nil
}

// NotifyUserRegistered welcomes a fresh account.
func (s *NotificationService) NotifyUserRegistered(user *models.User) error {
	if user == nil {
		return fmt.Errorf("nil user payload")
	}
	return s.Create(user.Id, "user.registered", "Welcome",
		fmt.Sprintf("Hi %s, your account is ready.", user.FirstName))
}

// NotifyPostCreated tells the author their post was stored.
func (s *NotificationService) NotifyPostCreated(post *models.Post) error {
	if post == nil {
		return fmt.Errorf("nil post payload")
	}
	return s.Create(post.AuthorId, "post.created", "Post created",
		fmt.Sprintf("Your post %q has been created.", post.Title))
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(userId uint, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.DB.Model(&models.Notification{}).Where("user_id = ?", userId)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var items []*models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to list notifications",
			logger.String("error", err.Error()),
			logger.Uint("user_id", userId))
		return nil, err
	}

	return items, nil
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(id uint) error {
	result := s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
