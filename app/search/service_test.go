package search

import (
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

func newTestService(t *testing.T) *SearchService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SearchEntry{}))
	return NewSearchService(db, logger.NewNop())
}

func TestIndexAndSearch(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Index("post", 1, "Gopher habits", "Gophers dig tunnels.", "/posts/slug/gopher-habits"))
	require.NoError(t, svc.Index("post", 2, "Unrelated", "Nothing to see.", "/posts/slug/unrelated"))

	results, err := svc.Search("gopher", "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Gopher habits", results[0].Title)
	assert.Equal(t, uint(1), results[0].EntityId)
	assert.Equal(t, "/posts/slug/gopher-habits", results[0].URL)
}

func TestSearchMatchesContent(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Index("post", 1, "Title", "The hidden TREASURE is here.", "/p/1"))

	results, err := svc.Search("treasure", "", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1, "match must be case-insensitive across content")
}

func TestIndexUpserts(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Index("post", 1, "Old title", "old", "/p/1"))
	require.NoError(t, svc.Index("post", 1, "New title", "new", "/p/1"))

	results, err := svc.Search("title", "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1, "reindexing must replace, not duplicate")
	assert.Equal(t, "New title", results[0].Title)
}

func TestIndexPostRespectsPublished(t *testing.T) {
	svc := newTestService(t)

	post := &models.Post{Id: 1, Title: "Visible", Content: "body", Slug: "visible", Published: true}
	require.NoError(t, svc.IndexPost(post))

	results, err := svc.Search("visible", "post", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Unpublishing removes it from the index.
	post.Published = false
	require.NoError(t, svc.IndexPost(post))

	results, err = svc.Search("visible", "post", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRemovePost(t *testing.T) {
	svc := newTestService(t)
	post := &models.Post{Id: 1, Title: "Gone soon", Slug: "gone-soon", Published: true}
	require.NoError(t, svc.IndexPost(post))
	require.NoError(t, svc.RemovePost(post))

	results, err := svc.Search("gone", "", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEntityTypeFilter(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Index("post", 1, "shared term", "", "/p/1"))
	require.NoError(t, svc.Index("page", 1, "shared term", "", "/pg/1"))

	results, err := svc.Search("shared", "post", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "post", results[0].EntityType)
}

func TestExcerptTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcdefghij"
	}
	short := excerpt(long, 160)
	assert.Len(t, []rune(short), 161) // 160 runes plus ellipsis
	assert.Equal(t, "tiny", excerpt("tiny", 160))
}
