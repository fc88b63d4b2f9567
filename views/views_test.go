package views

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	g "github.com/maragudk/gomponents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prolific/auth"
	"prolific/models"
	"prolific/seo"
)

func render(t *testing.T, n g.Node) string {
	var sb strings.Builder
	require.NoError(t, n.Render(&sb))
	return sb.String()
}

func TestPage_Render(t *testing.T) {
	w := httptest.NewRecorder()
	page := Page{Node: NotFoundPage(LayoutProps{})}
	require.NoError(t, page.Render(w))

	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<!doctype html>")
	assert.Contains(t, w.Body.String(), "Not found | Prolific")
}

func TestLayout_NavState(t *testing.T) {
	anon := render(t, Layout(LayoutProps{Title: "Home"}))
	assert.Contains(t, anon, `href="/login"`)
	assert.NotContains(t, anon, `action="/logout"`)

	signed := render(t, Layout(LayoutProps{Title: "Home", CurrentUser: "Ada"}))
	assert.Contains(t, signed, "Logged in as Ada")
	assert.Contains(t, signed, `action="/logout"`)
	assert.NotContains(t, signed, `class="sidebar"`)

	dash := render(t, Layout(LayoutProps{CurrentUser: "Ada", Dashboard: true}))
	assert.Contains(t, dash, `class="sidebar"`)
}

func TestLayout_Flashes(t *testing.T) {
	html := render(t, Layout(LayoutProps{Flashes: []auth.Flash{
		{Kind: auth.FlashError, Message: "Post not found."},
	}}))
	assert.Contains(t, html, `class="flash flash-error"`)
	assert.Contains(t, html, "Post not found.")
}

func TestBlogPages(t *testing.T) {
	post := models.Post{
		ID:         "p1",
		Title:      "Hello <World>",
		Slug:       "hello-world",
		Content:    "Some content",
		AuthorName: "Ada",
		CreatedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	list := render(t, BlogListPage(LayoutProps{Title: "Blog"}, []models.Post{post}))
	assert.Contains(t, list, `href="/blog/hello-world"`)
	assert.Contains(t, list, "Hello &lt;World&gt;")
	assert.Contains(t, list, "March 1, 2024")

	empty := render(t, BlogListPage(LayoutProps{Title: "Blog"}, nil))
	assert.Contains(t, empty, "No posts published yet")

	detail := render(t, BlogPostPage(LayoutProps{Title: post.Title, Description: "desc"}, &post, "<p>rendered</p>"))
	assert.Contains(t, detail, "<p>rendered</p>")
	assert.Contains(t, detail, `<meta name="description" content="desc">`)
}

func TestPostFormPage(t *testing.T) {
	newForm := render(t, PostFormPage(LayoutProps{}, PostForm{
		Title:  "Hey",
		Errors: map[string]string{"title": "Title must be at least 5 characters"},
	}))
	assert.Contains(t, newForm, `action="/dashboard/blog/new"`)
	assert.Contains(t, newForm, `enctype="multipart/form-data"`)
	assert.Contains(t, newForm, "Title must be at least 5 characters")
	assert.NotContains(t, newForm, `name="status"`)

	editForm := render(t, PostFormPage(LayoutProps{}, PostForm{
		ID:       "p1",
		Title:    "Existing",
		Status:   models.StatusPublished,
		ImageURL: "/files/abc",
	}))
	assert.Contains(t, editForm, `action="/dashboard/blog/edit/p1"`)
	assert.Contains(t, editForm, `<option value="published" selected>`)
	assert.Contains(t, editForm, `src="/files/abc"`)
}

func TestSEOEnhancerPage(t *testing.T) {
	html := render(t, SEOEnhancerPage(LayoutProps{}, SEOForm{
		Content: "content",
		Result: &seo.Output{
			TitleSuggestion:                "Better title",
			MetaDescriptionSuggestion:      "Meta",
			KeywordSuggestions:             []string{"go", "web"},
			ContentOptimizationSuggestions: "Shorter paragraphs",
		},
	}))
	assert.Contains(t, html, "Better title")
	assert.Contains(t, html, `<span class="tag">web</span>`)

	disabled := render(t, SEOEnhancerPage(LayoutProps{}, SEOForm{Disabled: true}))
	assert.Contains(t, disabled, "not configured")
	assert.NotContains(t, disabled, "Suggestions")
}
