package media

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/storage"
)

// MediaUploadedEvent announces a finished upload to the rest of the system.
const MediaUploadedEvent = "media.uploaded"

type MediaService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Storage *storage.ActiveStorage
	Logger  logger.Logger
}

func NewMediaService(db *gorm.DB, em *emitter.Emitter, activeStorage *storage.ActiveStorage, log logger.Logger) *MediaService {
	if activeStorage != nil {
		activeStorage.RegisterAttachment("media", storage.AttachmentConfig{
			Field:             "file",
			Path:              "library",
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp", ".heic", ".gif", ".pdf", ".zip"},
			MaxFileSize:       50 << 20, // 50MB
		})
	}

	return &MediaService{
		DB:      db,
		Emitter: em,
		Storage: activeStorage,
		Logger:  log,
	}
}

// Upload stores the file and creates the library record, then announces it.
func (s *MediaService) Upload(userId uint, name string, file *multipart.FileHeader) (*models.Media, error) {
	if name == "" {
		name = file.Filename
	}

	item := &models.Media{
		Name:   name,
		Type:   mediaType(file.Filename),
		UserId: userId,
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create media record", logger.String("error", err.Error()))
		return nil, err
	}

	attachment, err := s.Storage.Attach(item, "file", file)
	if err != nil {
		// The library record is useless without its file.
		s.DB.Delete(item)
		s.Logger.Error("failed to attach media file",
			logger.String("error", err.Error()),
			logger.Uint("media_id", item.Id))
		return nil, err
	}
	item.File = attachment

	s.Emitter.Emit(MediaUploadedEvent, item)

	return item, nil
}

// GetById returns one media record with its file preloaded.
func (s *MediaService) GetById(id uint) (*models.Media, error) {
	item := &models.Media{}
	query := item.Preload(s.DB)
	if err := query.First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// List returns the newest library entries.
func (s *MediaService) List(limit int) ([]*models.Media, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []*models.Media
	query := (&models.Media{}).Preload(s.DB)
	err := query.Order("created_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		s.Logger.Error("failed to list media", logger.String("error", err.Error()))
		return nil, err
	}
	return items, nil
}

// Delete removes the stored file and the record.
func (s *MediaService) Delete(id uint) error {
	item, err := s.GetById(id)
	if err != nil {
		return err
	}

	if item.File != nil {
		if err := s.Storage.Delete(item.File); err != nil {
			s.Logger.Error("failed to delete media file",
				logger.String("error", err.Error()),
				logger.Uint("media_id", id))
			return err
		}
	}

	return s.DB.Delete(item).Error
}

// mediaType buckets a filename into a coarse library category.
func mediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif", ".gif":
		return "image"
	case ".pdf":
		return "document"
	default:
		return "file"
	}
}
