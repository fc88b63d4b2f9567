package blog

import (
	"bytes"
	"context"
	"errors"
	"html"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"prolific/analytics"
	"prolific/auth"
	"prolific/cache"
	"prolific/models"
	"prolific/store"
	"prolific/views"
)

// PostReader is the read side of the posts service used by public pages.
type PostReader interface {
	ListPublished(ctx context.Context) ([]models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
}

type BlogModule struct {
	posts   PostReader
	cache   *cache.Store
	tracker *analytics.Tracker
}

// markdown renderer; raw HTML in posts is escaped
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

// NewBlogModule builds the public blog. pageCache and tracker may be nil.
func NewBlogModule(posts PostReader, pageCache *cache.Store, tracker *analytics.Tracker) *BlogModule {
	return &BlogModule{posts: posts, cache: pageCache, tracker: tracker}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/blog", b.index)

	var handlers []gin.HandlerFunc
	if b.tracker != nil {
		handlers = append(handlers, b.tracker.Middleware())
	}
	if b.cache != nil {
		handlers = append(handlers, b.cache.Middleware())
	}
	handlers = append(handlers, b.post)
	router.GET("/blog/:slug", handlers...)
}

func (b *BlogModule) index(c *gin.Context) {
	posts, err := b.posts.ListPublished(c.Request.Context())
	if err != nil {
		log.Printf("Error listing published posts: %v", err)
		props := views.Props(c, "Blog")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: err.Error()})
		views.Render(c, http.StatusInternalServerError, views.BlogListPage(props, nil))
		return
	}

	props := views.Props(c, "Blog")
	props.Description = "Articles and notes."
	views.Render(c, http.StatusOK, views.BlogListPage(props, posts))
}

func (b *BlogModule) post(c *gin.Context) {
	post, err := b.posts.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, store.ErrNotFound) {
		views.Render(c, http.StatusNotFound, views.NotFoundPage(views.Props(c, "Post not found")))
		return
	}
	if err != nil {
		log.Printf("Error loading post %s: %v", c.Param("slug"), err)
		props := views.Props(c, "Error")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: err.Error()})
		views.Render(c, http.StatusInternalServerError, views.NotFoundPage(props))
		return
	}

	props := views.Props(c, post.Title)
	props.Description = post.Excerpt(160)
	views.Render(c, http.StatusOK, views.BlogPostPage(props, post, renderMarkdown(post.Content)))
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}
