package activities

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plinth/app/models"
	"plinth/core/logger"
)

func newTestService(t *testing.T) *ActivityService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}))
	return NewActivityService(db, logger.NewNop())
}

func TestRecordStoresMetadata(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Record(1, "post", 5, "created", map[string]any{"title": "Gopher habits"}))

	items, err := svc.GetByEntity("post", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "created", items[0].Action)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(items[0].Metadata, &meta))
	assert.Equal(t, "Gopher habits", meta["title"])
}

func TestRecordWithoutMetadata(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Record(1, "user", 1, "logged_in", nil))

	items, err := svc.GetByEntity("user", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Metadata)
}

func TestRecordUserAction(t *testing.T) {
	svc := newTestService(t)
	user := &models.User{Id: 9, Email: "ada@example.com"}

	require.NoError(t, svc.RecordUserAction(user, "registered"))

	items, err := svc.GetByEntity("user", 9)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(9), items[0].UserId)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(items[0].Metadata, &meta))
	assert.Equal(t, "ada@example.com", meta["email"])

	assert.Error(t, svc.RecordUserAction(nil, "registered"))
}

func TestRecordPostAction(t *testing.T) {
	svc := newTestService(t)
	post := &models.Post{Id: 4, AuthorId: 9, Title: "Gopher habits", Slug: "gopher-habits"}

	require.NoError(t, svc.RecordPostAction(post, "created"))

	items, err := svc.GetByEntity("post", 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(9), items[0].UserId)

	assert.Error(t, svc.RecordPostAction(nil, "created"))
}

func TestGetRecentHonorsLimit(t *testing.T) {
	svc := newTestService(t)
	for i := 1; i <= 15; i++ {
		require.NoError(t, svc.Record(1, "post", uint(i), "created", nil))
	}

	items, err := svc.GetRecent(5)
	require.NoError(t, err)
	assert.Len(t, items, 5)

	// Zero falls back to the default window.
	items, err = svc.GetRecent(0)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}
