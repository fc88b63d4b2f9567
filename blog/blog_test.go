package blog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"prolific/analytics"
	"prolific/auth"
	"prolific/cache"
	"prolific/models"
	"prolific/permissions"
	"prolific/posts"
	"prolific/store"
)

func setupTestStore(t *testing.T) store.DocumentStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}))
	return store.NewSQLStore(db)
}

func setupTestRouter(blogModule *BlogModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions(auth.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	blogModule.RegisterRoutes(router)
	return router
}

func createTestPost(t *testing.T, docs store.DocumentStore, slug string, status models.Status, createdAt time.Time) *models.Post {
	post := &models.Post{
		Title:       "Post " + slug,
		Slug:        slug,
		Content:     "# Test Content\n\nThis is a **test** post.\n\n<script>alert(1)</script>",
		AuthorID:    "author",
		AuthorName:  "Author",
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Permissions: permissions.ForPost("author", status),
	}
	require.NoError(t, docs.Create(context.Background(), post))
	return post
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndex_ListsPublishedNewestFirst(t *testing.T) {
	docs := setupTestStore(t)
	now := time.Now()
	createTestPost(t, docs, "older", models.StatusPublished, now.Add(-time.Hour))
	createTestPost(t, docs, "newer", models.StatusPublished, now)
	createTestPost(t, docs, "hidden-draft", models.StatusDraft, now)

	router := setupTestRouter(NewBlogModule(posts.NewService(docs, nil), nil, nil))
	w := get(router, "/blog")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Post newer")
	assert.Contains(t, body, "Post older")
	assert.NotContains(t, body, "hidden-draft")
	assert.Less(t, strings.Index(body, "Post newer"), strings.Index(body, "Post older"))
}

func TestPost_Published(t *testing.T) {
	docs := setupTestStore(t)
	createTestPost(t, docs, "test-post", models.StatusPublished, time.Now())

	router := setupTestRouter(NewBlogModule(posts.NewService(docs, nil), nil, nil))
	w := get(router, "/blog/test-post")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Test Content</h1>")
	assert.Contains(t, body, "<strong>test</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, `<meta name="description"`)
}

func TestPost_DraftIsNotFound(t *testing.T) {
	docs := setupTestStore(t)
	createTestPost(t, docs, "secret", models.StatusDraft, time.Now())

	router := setupTestRouter(NewBlogModule(posts.NewService(docs, nil), nil, nil))
	w := get(router, "/blog/secret")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "Test Content")
	assert.Contains(t, w.Body.String(), "could not be found")
}

func TestPost_Missing(t *testing.T) {
	router := setupTestRouter(NewBlogModule(posts.NewService(setupTestStore(t), nil), nil, nil))
	w := get(router, "/blog/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPost_CacheClearedOnUnpublish(t *testing.T) {
	docs := setupTestStore(t)
	post := createTestPost(t, docs, "cached", models.StatusPublished, time.Now())

	pageCache, err := cache.New(t.TempDir(), time.Minute)
	require.NoError(t, err)
	svc := posts.NewService(docs, nil)
	svc.SetInvalidator(pageCache)
	router := setupTestRouter(NewBlogModule(svc, pageCache, nil))

	assert.Equal(t, "MISS", get(router, "/blog/cached").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", get(router, "/blog/cached").Header().Get("X-Cache"))

	_, err = svc.Update(context.Background(), "author", post.ID, posts.UpdateInput{
		Title:   post.Title,
		Content: strings.Repeat("Unpublished content. ", 5),
		Status:  models.StatusDraft,
	})
	require.NoError(t, err)

	w := get(router, "/blog/cached")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPost_ViewsCountedOnCacheHits(t *testing.T) {
	docs := setupTestStore(t)
	createTestPost(t, docs, "counted", models.StatusPublished, time.Now())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	tracker, err := analytics.NewTracker(db)
	require.NoError(t, err)
	pageCache, err := cache.New(t.TempDir(), time.Minute)
	require.NoError(t, err)

	router := setupTestRouter(NewBlogModule(posts.NewService(docs, nil), pageCache, tracker))

	assert.Equal(t, "MISS", get(router, "/blog/counted").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", get(router, "/blog/counted").Header().Get("X-Cache"))
	assert.Equal(t, http.StatusNotFound, get(router, "/blog/nope").Code)

	counts, err := tracker.CountBySlug(context.Background(), []string{"counted", "nope"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["counted"])
	assert.Equal(t, int64(0), counts["nope"])
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("Visit https://go.dev and use `go test`.\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, `<a href="https://go.dev">`)
	assert.Contains(t, out, "<code>go test</code>")
	assert.Contains(t, out, "<table>")
}
