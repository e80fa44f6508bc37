package posts

import (
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"plinth/app/models"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/storage"
	"plinth/core/types"
)

// AuthorDirectory is the slice of the users service the posts module needs.
// It is resolved from the registry at boot, so posts never imports users.
type AuthorDirectory interface {
	GetById(id uint) (*models.User, error)
}

type PostService struct {
	DB      *gorm.DB
	Emitter *emitter.Emitter
	Storage *storage.ActiveStorage
	Logger  logger.Logger

	authors AuthorDirectory
}

func NewPostService(db *gorm.DB, em *emitter.Emitter, activeStorage *storage.ActiveStorage, log logger.Logger) *PostService {
	if activeStorage != nil {
		activeStorage.RegisterAttachment("post", storage.AttachmentConfig{
			Field:             "featured_image",
			Path:              "posts",
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp", ".heic"},
			MaxFileSize:       10 << 20, // 10MB
		})
	}

	return &PostService{
		DB:      db,
		Emitter: em,
		Storage: activeStorage,
		Logger:  log,
	}
}

// SetAuthorDirectory wires the users service resolved during boot.
func (s *PostService) SetAuthorDirectory(authors AuthorDirectory) {
	s.authors = authors
}

// applySorting applies sorting to the query based on the sort and order parameters
func (s *PostService) applySorting(query *gorm.DB, sortBy *string, sortOrder *string) {
	validSortFields := map[string]string{
		"id":           "id",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"title":        "title",
		"slug":         "slug",
		"author_id":    "author_id",
		"status":       "status",
		"category":     "category",
		"published":    "published",
		"published_at": "published_at",
		"scheduled_at": "scheduled_at",
	}

	defaultSortBy := "id"
	defaultSortOrder := "desc"

	sortField := defaultSortBy
	if sortBy != nil && *sortBy != "" {
		if field, exists := validSortFields[*sortBy]; exists {
			sortField = field
		}
	}

	sortDirection := defaultSortOrder
	if sortOrder != nil && (*sortOrder == "asc" || *sortOrder == "desc") {
		sortDirection = *sortOrder
	}

	query.Order(sortField + " " + sortDirection)
}

func (s *PostService) Create(req *models.CreatePostRequest) (*models.Post, error) {
	if s.authors != nil {
		if _, err := s.authors.GetById(req.AuthorId); err != nil {
			return nil, fmt.Errorf("author %d not found: %w", req.AuthorId, err)
		}
	}

	postSlug := req.Slug
	if postSlug == "" {
		postSlug = slug.Make(req.Title)
	}

	status := req.Status
	if status == "" {
		switch {
		case req.Published:
			status = models.PostStatusPublished
		case !req.ScheduledAt.IsZero():
			status = models.PostStatusScheduled
		default:
			status = models.PostStatusDraft
		}
	}

	item := &models.Post{
		Title:       req.Title,
		Slug:        postSlug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		AuthorId:    req.AuthorId,
		Status:      status,
		Category:    req.Category,
		Published:   req.Published,
		PublishedAt: req.PublishedAt,
		ScheduledAt: req.ScheduledAt,
		Tags:        req.Tags,
	}
	if item.Published && item.PublishedAt.IsZero() {
		item.PublishedAt = types.Now()
	}

	if err := s.DB.Create(item).Error; err != nil {
		s.Logger.Error("failed to create post", logger.String("error", err.Error()))
		return nil, err
	}

	s.Emitter.Emit(PostCreatedEvent, item)

	return s.GetById(item.Id)
}

func (s *PostService) Update(id uint, req *models.UpdatePostRequest) (*models.Post, error) {
	item := &models.Post{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find post for update",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Slug != "" {
		item.Slug = slug.Make(req.Slug)
	}
	if req.Content != "" {
		item.Content = req.Content
	}
	if req.Excerpt != "" {
		item.Excerpt = req.Excerpt
	}
	if req.Status != "" {
		item.Status = req.Status
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Published != nil {
		item.Published = *req.Published
		if item.Published {
			item.Status = models.PostStatusPublished
			if item.PublishedAt.IsZero() {
				item.PublishedAt = types.Now()
			}
		}
	}
	if !req.PublishedAt.IsZero() {
		item.PublishedAt = req.PublishedAt
	}
	if !req.ScheduledAt.IsZero() {
		item.ScheduledAt = req.ScheduledAt
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}

	if err := s.DB.Save(item).Error; err != nil {
		s.Logger.Error("failed to update post",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	result, err := s.GetById(item.Id)
	if err != nil {
		return nil, err
	}

	s.Emitter.Emit(PostUpdatedEvent, result)

	return result, nil
}

func (s *PostService) Delete(id uint) error {
	item := &models.Post{}
	if err := s.DB.First(item, id).Error; err != nil {
		s.Logger.Error("failed to find post for deletion",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	if item.FeaturedImage != nil {
		if err := s.Storage.Delete(item.FeaturedImage); err != nil {
			s.Logger.Error("failed to delete featured_image",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return err
		}
	}

	if err := s.DB.Delete(item).Error; err != nil {
		s.Logger.Error("failed to delete post",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return err
	}

	s.Emitter.Emit(PostDeletedEvent, item)

	return nil
}

func (s *PostService) GetById(id uint) (*models.Post, error) {
	item := &models.Post{}
	query := item.Preload(s.DB)
	if err := query.First(item, id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetBySlug returns the post with the given slug.
func (s *PostService) GetBySlug(postSlug string) (*models.Post, error) {
	item := &models.Post{}
	query := item.Preload(s.DB)
	if err := query.Where("slug = ?", postSlug).First(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PostService) GetAll(page *int, limit *int, sortBy *string, sortOrder *string) (*types.PaginatedResponse, error) {
	var items []*models.Post
	var total int64

	query := s.DB.Model(&models.Post{})

	defaultPage := 1
	defaultLimit := 10
	if page == nil {
		page = &defaultPage
	}
	if limit == nil {
		limit = &defaultLimit
	}

	if err := query.Count(&total).Error; err != nil {
		s.Logger.Error("failed to count posts", logger.String("error", err.Error()))
		return nil, err
	}

	offset := (*page - 1) * *limit
	query = query.Offset(offset).Limit(*limit)

	s.applySorting(query, sortBy, sortOrder)

	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("failed to get posts", logger.String("error", err.Error()))
		return nil, err
	}

	responses := make([]*models.PostListResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToListResponse()
	}

	totalPages := int(math.Ceil(float64(total) / float64(*limit)))
	if totalPages == 0 {
		totalPages = 1
	}

	return &types.PaginatedResponse{
		Data: responses,
		Pagination: types.Pagination{
			Total:      int(total),
			Page:       *page,
			PageSize:   *limit,
			TotalPages: totalPages,
		},
	}, nil
}

// PublishDue flips scheduled posts whose time has come to published. Run by
// the cron scheduler.
func (s *PostService) PublishDue(ctx context.Context) error {
	var due []*models.Post
	now := time.Now()

	err := s.DB.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", models.PostStatusScheduled, now).
		Find(&due).Error
	if err != nil {
		return fmt.Errorf("failed to load scheduled posts: %w", err)
	}

	for _, item := range due {
		item.Published = true
		item.Status = models.PostStatusPublished
		item.PublishedAt = types.Now()

		if err := s.DB.Save(item).Error; err != nil {
			s.Logger.Error("failed to publish scheduled post",
				logger.String("error", err.Error()),
				logger.Uint("post_id", item.Id))
			continue
		}

		s.Emitter.Emit(PostUpdatedEvent, item)
		s.Logger.Info("scheduled post published",
			logger.Uint("post_id", item.Id),
			logger.String("slug", item.Slug))
	}

	return nil
}

// UploadFeaturedImage uploads a file for the Post's FeaturedImage field
func (s *PostService) UploadFeaturedImage(id uint, file *multipart.FileHeader) (*models.Post, error) {
	item := &models.Post{}
	if err := s.DB.First(item, id).Error; err != nil {
		return nil, err
	}

	if item.FeaturedImage != nil {
		if err := s.Storage.Delete(item.FeaturedImage); err != nil {
			s.Logger.Error("failed to delete existing featured_image",
				logger.String("error", err.Error()),
				logger.Int("id", int(id)))
			return nil, err
		}
	}

	if _, err := s.Storage.Attach(item, "featured_image", file); err != nil {
		s.Logger.Error("failed to attach featured_image",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	return s.GetById(id)
}

// RemoveFeaturedImage removes the file from the Post's FeaturedImage field
func (s *PostService) RemoveFeaturedImage(id uint) (*models.Post, error) {
	item := &models.Post{}
	query := item.Preload(s.DB)
	if err := query.First(item, id).Error; err != nil {
		return nil, err
	}

	if item.FeaturedImage == nil {
		return item, nil
	}

	if err := s.Storage.Delete(item.FeaturedImage); err != nil {
		s.Logger.Error("failed to delete featured_image",
			logger.String("error", err.Error()),
			logger.Int("id", int(id)))
		return nil, err
	}

	return s.GetById(id)
}
