package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gertd/go-pluralize"
	"gorm.io/gorm"
)

// ActiveStorage binds uploaded files to model fields: files go to the
// configured provider, the bookkeeping row goes to the attachments table.
// Attachment configs are registered by the owning modules at init time.
type ActiveStorage struct {
	db             *gorm.DB
	provider       Provider
	defaultPath    string
	configs        map[string]map[string]AttachmentConfig
	imageProcessor *ImageProcessor
	plural         *pluralize.Client
}

// NewActiveStorage builds the storage layer with the provider selected by
// config and migrates the attachments table.
func NewActiveStorage(db *gorm.DB, config Config) (*ActiveStorage, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	storagePath := config.Path
	if !filepath.IsAbs(storagePath) {
		storagePath = filepath.Join(cwd, storagePath)
	}

	var provider Provider
	switch strings.ToLower(config.Provider) {
	case "local", "":
		provider, err = NewLocalProvider(LocalConfig{
			BasePath: storagePath,
			BaseURL:  config.BaseURL,
		})
	case "s3":
		provider, err = NewS3Provider(S3Config{
			AccessKeyID:     config.AccessKey,
			AccessKeySecret: config.SecretKey,
			Endpoint:        config.Endpoint,
			Bucket:          config.Bucket,
			BaseURL:         config.BaseURL,
			Region:          config.Region,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	as := &ActiveStorage{
		db:             db,
		provider:       provider,
		defaultPath:    storagePath,
		configs:        make(map[string]map[string]AttachmentConfig),
		imageProcessor: NewImageProcessor(85),
		plural:         pluralize.NewClient(),
	}

	if err := db.AutoMigrate(&Attachment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate attachments table: %w", err)
	}

	return as, nil
}

// RegisterAttachment declares the upload rules for one model field.
func (as *ActiveStorage) RegisterAttachment(modelName string, config AttachmentConfig) {
	if as.configs[modelName] == nil {
		as.configs[modelName] = make(map[string]AttachmentConfig)
	}
	as.configs[modelName][config.Field] = config
}

// Attach stores the uploaded file for the model's field and records the
// attachment. Images are converted to WebP before upload.
func (as *ActiveStorage) Attach(model Attachable, field string, file *multipart.FileHeader) (*Attachment, error) {
	config, err := as.getConfig(model.GetModelName(), field)
	if err != nil {
		return nil, err
	}

	if err := as.validateFile(file, config); err != nil {
		return nil, err
	}

	var convertedData []byte
	convertedFilename := file.Filename
	if as.imageProcessor != nil {
		convertedData, convertedFilename, err = as.imageProcessor.ConvertToWebP(file)
		if err != nil {
			return nil, fmt.Errorf("failed to convert image to webp: %w", err)
		}
	}

	// Upload path: plural model name then field, e.g. posts/featured_image.
	uploadPath := filepath.Join(config.Path, as.plural.Plural(model.GetModelName()), field)
	uploadConfig := UploadConfig{
		AllowedExtensions: config.AllowedExtensions,
		MaxFileSize:       config.MaxFileSize,
		UploadPath:        uploadPath,
	}

	var result *UploadResult
	if convertedData != nil {
		result, err = as.provider.UploadBytes(convertedData, convertedFilename, uploadConfig)
	} else {
		result, err = as.provider.Upload(file, uploadConfig)
	}
	if err != nil {
		return nil, err
	}

	attachment := &Attachment{
		ModelType: model.GetModelName(),
		ModelId:   model.GetId(),
		Field:     field,
		Filename:  result.Filename,
		Path:      result.Path,
		URL:       as.provider.GetURL(result.Path),
		Size:      result.Size,
	}

	if err := as.db.Create(attachment).Error; err != nil {
		// Roll back the uploaded file so storage does not leak orphans.
		_ = as.provider.Delete(result.Path)
		return nil, err
	}

	return attachment, nil
}

// Delete removes the stored file and its attachment record.
func (as *ActiveStorage) Delete(attachment *Attachment) error {
	if err := as.provider.Delete(attachment.Path); err != nil {
		return err
	}
	return as.db.Delete(attachment).Error
}

// LoadAttachment fetches the attachment bound to the model's field.
func (as *ActiveStorage) LoadAttachment(model Attachable, field string) (*Attachment, error) {
	var attachment Attachment
	err := as.db.Where("model_type = ? AND model_id = ? AND field = ?",
		model.GetModelName(), model.GetId(), field).First(&attachment).Error
	if err != nil {
		return nil, err
	}

	attachment.URL = as.provider.GetURL(attachment.Path)
	return &attachment, nil
}

// GetProvider returns the underlying storage provider.
func (as *ActiveStorage) GetProvider() Provider {
	return as.provider
}

func (as *ActiveStorage) getConfig(modelName, field string) (AttachmentConfig, error) {
	modelConfigs, ok := as.configs[modelName]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for model %s", modelName)
	}
	config, ok := modelConfigs[field]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for field %s in model %s", field, modelName)
	}
	return config, nil
}

func (as *ActiveStorage) validateFile(file *multipart.FileHeader, config AttachmentConfig) error {
	if config.MaxFileSize > 0 && file.Size > config.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(config.AllowedExtensions) > 0 {
		allowed := false
		for _, e := range config.AllowedExtensions {
			if strings.ToLower(e) == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("file extension %s is not allowed", ext)
		}
	}

	return nil
}
