package site

import (
	"context"
	"encoding/xml"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"prolific/models"
	"prolific/views"
)

// PublishedLister lists the posts that appear in the sitemap.
type PublishedLister interface {
	ListPublished(ctx context.Context) ([]models.Post, error)
}

type SiteModule struct {
	posts    PublishedLister
	domain   string
	projects []views.Project
}

var featuredProjects = []views.Project{
	{
		Title:        "E-commerce Platform",
		Description:  "A full-featured e-commerce platform with payments and inventory management.",
		Technologies: []string{"Go", "PostgreSQL", "Stripe"},
	},
	{
		Title:        "Task Management App",
		Description:  "A collaborative task management tool with real-time updates.",
		Technologies: []string{"Go", "WebSockets", "Redis"},
	},
	{
		Title:        "Personal Blog CMS",
		Description:  "This very Prolific app! A blog and portfolio CMS.",
		Technologies: []string{"Go", "gin", "SQLite"},
		URL:          "/blog",
	},
}

func NewSiteModule(posts PublishedLister, domain string) *SiteModule {
	return &SiteModule{
		posts:    posts,
		domain:   strings.TrimSuffix(domain, "/"),
		projects: featuredProjects,
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.GET("/sitemap.xml", s.sitemap)
}

func (s *SiteModule) index(c *gin.Context) {
	props := views.Props(c, "")
	props.Description = "Portfolio and blog of a full-stack developer."
	views.Render(c, http.StatusOK, views.HomePage(props, s.projects))
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *SiteModule) sitemap(c *gin.Context) {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: s.domain + "/", ChangeFreq: "weekly", Priority: "1.0"},
			{Loc: s.domain + "/blog", ChangeFreq: "daily", Priority: "0.8"},
		},
	}

	posts, err := s.posts.ListPublished(c.Request.Context())
	if err != nil {
		log.Printf("Error listing posts for sitemap: %v", err)
	}
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.domain + "/blog/" + post.Slug,
			LastMod:    post.UpdatedAt.Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	c.XML(http.StatusOK, set)
}
