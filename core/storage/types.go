package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Config selects and configures the storage provider.
type Config struct {
	Provider  string // local, s3
	Path      string
	BaseURL   string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	Region    string
}

// UploadConfig constrains a single upload.
type UploadConfig struct {
	AllowedExtensions []string
	MaxFileSize       int64
	UploadPath        string
}

// UploadResult describes a stored file.
type UploadResult struct {
	Filename string
	Path     string
	Size     int64
}

// Provider is a storage backend.
type Provider interface {
	Upload(file *multipart.FileHeader, config UploadConfig) (*UploadResult, error)
	UploadBytes(data []byte, filename string, config UploadConfig) (*UploadResult, error)
	Delete(path string) error
	GetURL(path string) string
}

// Attachable is implemented by models that own file attachments.
type Attachable interface {
	GetId() uint
	GetModelName() string
}

// Attachment is the database record for a stored file bound to a model
// field.
type Attachment struct {
	Id        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	ModelType string         `json:"model_type" gorm:"index"`
	ModelId   uint           `json:"model_id" gorm:"index"`
	Field     string         `json:"field"`
	Filename  string         `json:"filename"`
	Path      string         `json:"path"`
	URL       string         `json:"url"`
	Size      int64          `json:"size"`
}

// AttachmentConfig declares the upload rules for one model field.
type AttachmentConfig struct {
	Field             string
	Path              string
	AllowedExtensions []string
	MaxFileSize       int64
}

// generateUniqueFilename prefixes the sanitized original name with a random
// token so concurrent uploads of the same file never collide.
func generateUniqueFilename(original string) string {
	token := make([]byte, 8)
	_, _ = rand.Read(token)

	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)

	return fmt.Sprintf("%s-%s%s", base, hex.EncodeToString(token), ext)
}
