package posts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plinth/app/models"
	"plinth/core/emitter"
	"plinth/core/logger"
	"plinth/core/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}))
	return db
}

func newTestService(t *testing.T, em *emitter.Emitter) *PostService {
	t.Helper()
	if em == nil {
		em = emitter.New()
	}
	return NewPostService(newTestDB(t), em, nil, logger.NewNop())
}

func TestCreateGeneratesSlug(t *testing.T) {
	em := emitter.New()
	var created *models.Post
	em.On(PostCreatedEvent, func(payload any) error {
		created = payload.(*models.Post)
		return nil
	})

	svc := newTestService(t, em)
	post, err := svc.Create(&models.CreatePostRequest{
		Title:    "Hello, Wörld!",
		Content:  "body",
		AuthorId: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	require.NotNil(t, created, "posts.created must fire")
	assert.Equal(t, post.Id, created.Id)
}

func TestCreatePublishedSetsPublishedAt(t *testing.T) {
	svc := newTestService(t, nil)
	post, err := svc.Create(&models.CreatePostRequest{
		Title:     "Launch",
		AuthorId:  1,
		Published: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.False(t, post.PublishedAt.IsZero())
}

func TestCreateVerifiesAuthor(t *testing.T) {
	svc := newTestService(t, nil)
	svc.SetAuthorDirectory(authorDirectoryFunc(func(id uint) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}))

	_, err := svc.Create(&models.CreatePostRequest{Title: "Orphan", AuthorId: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author 42 not found")
}

type authorDirectoryFunc func(id uint) (*models.User, error)

func (f authorDirectoryFunc) GetById(id uint) (*models.User, error) { return f(id) }

func TestUpdateAppliesPartialChanges(t *testing.T) {
	em := emitter.New()
	var updated bool
	em.On(PostUpdatedEvent, func(any) error {
		updated = true
		return nil
	})

	svc := newTestService(t, em)
	post, err := svc.Create(&models.CreatePostRequest{Title: "Draft", AuthorId: 1})
	require.NoError(t, err)

	published := true
	result, err := svc.Update(post.Id, &models.UpdatePostRequest{
		Title:     "Final title",
		Published: &published,
	})
	require.NoError(t, err)

	assert.Equal(t, "Final title", result.Title)
	assert.True(t, result.Published)
	assert.Equal(t, models.PostStatusPublished, result.Status)
	assert.False(t, result.PublishedAt.IsZero())
	// Untouched fields survive.
	assert.Equal(t, post.Slug, result.Slug)
	assert.True(t, updated, "posts.updated must fire")
}

func TestDeleteEmitsEvent(t *testing.T) {
	em := emitter.New()
	var deleted *models.Post
	em.On(PostDeletedEvent, func(payload any) error {
		deleted = payload.(*models.Post)
		return nil
	})

	svc := newTestService(t, em)
	post, err := svc.Create(&models.CreatePostRequest{Title: "Doomed", AuthorId: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(post.Id))
	require.NotNil(t, deleted)
	assert.Equal(t, post.Id, deleted.Id)

	_, err = svc.GetById(post.Id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetBySlug(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Create(&models.CreatePostRequest{Title: "Findable", AuthorId: 1})
	require.NoError(t, err)

	post, err := svc.GetBySlug("findable")
	require.NoError(t, err)
	assert.Equal(t, "Findable", post.Title)
}

func TestGetAllPaginates(t *testing.T) {
	svc := newTestService(t, nil)
	for i := 1; i <= 25; i++ {
		_, err := svc.Create(&models.CreatePostRequest{
			Title:    fmt.Sprintf("Post %02d", i),
			AuthorId: 1,
		})
		require.NoError(t, err)
	}

	page, limit := 2, 10
	result, err := svc.GetAll(&page, &limit, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, result.Pagination.Total)
	assert.Equal(t, 2, result.Pagination.Page)
	assert.Equal(t, 3, result.Pagination.TotalPages)

	items := result.Data.([]*models.PostListResponse)
	assert.Len(t, items, 10)
}

func TestGetAllSortWhitelist(t *testing.T) {
	svc := newTestService(t, nil)
	for _, title := range []string{"bravo", "alpha"} {
		_, err := svc.Create(&models.CreatePostRequest{Title: title, AuthorId: 1})
		require.NoError(t, err)
	}

	sortBy, order := "title", "asc"
	result, err := svc.GetAll(nil, nil, &sortBy, &order)
	require.NoError(t, err)
	items := result.Data.([]*models.PostListResponse)
	assert.Equal(t, "alpha", items[0].Title)

	// Unknown sort fields fall back to the default instead of erroring.
	bogus := "title; DROP TABLE posts"
	_, err = svc.GetAll(nil, nil, &bogus, &order)
	assert.NoError(t, err)
}

func TestPublishDue(t *testing.T) {
	em := emitter.New()
	var updates int
	em.On(PostUpdatedEvent, func(any) error {
		updates++
		return nil
	})

	svc := newTestService(t, em)

	past := types.DateTime{Time: time.Now().Add(-time.Hour)}
	future := types.DateTime{Time: time.Now().Add(time.Hour)}

	due, err := svc.Create(&models.CreatePostRequest{
		Title: "Due", AuthorId: 1, ScheduledAt: past,
	})
	require.NoError(t, err)
	notYet, err := svc.Create(&models.CreatePostRequest{
		Title: "Not yet", AuthorId: 1, ScheduledAt: future,
	})
	require.NoError(t, err)

	require.NoError(t, svc.PublishDue(context.Background()))

	published, err := svc.GetById(due.Id)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.Equal(t, models.PostStatusPublished, published.Status)

	pending, err := svc.GetById(notYet.Id)
	require.NoError(t, err)
	assert.False(t, pending.Published)
	assert.Equal(t, models.PostStatusScheduled, pending.Status)

	assert.Equal(t, 1, updates, "only the due post fires posts.updated")
}
