// Package dashboard serves the signed-in area: login, post management,
// the portfolio view and the SEO enhancer.
package dashboard

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prolific/analytics"
	"prolific/auth"
	"prolific/models"
	"prolific/posts"
	"prolific/seo"
	"prolific/storage"
	"prolific/store"
	"prolific/views"
)

type DashboardModule struct {
	accounts   *auth.Accounts
	posts      *posts.Service
	seo        seo.Enhancer
	tracker    *analytics.Tracker
	loginLimit gin.HandlerFunc
}

// NewDashboardModule wires the dashboard. enhancer may be nil, which
// disables the SEO page, and so may tracker. loginRateLimit is the number of login and signup
// attempts allowed per IP per minute; 0 disables the limit.
func NewDashboardModule(accounts *auth.Accounts, postService *posts.Service, enhancer seo.Enhancer, tracker *analytics.Tracker, loginRateLimit int) *DashboardModule {
	d := &DashboardModule{
		accounts: accounts,
		posts:    postService,
		seo:      enhancer,
		tracker:  tracker,
	}
	if loginRateLimit > 0 {
		d.loginLimit = auth.RateLimit(loginRateLimit, time.Minute)
	}
	return d
}

func (d *DashboardModule) RegisterRoutes(router *gin.Engine) {
	limited := []gin.HandlerFunc{}
	if d.loginLimit != nil {
		limited = append(limited, d.loginLimit)
	}

	router.GET("/login", d.loginPage)
	router.POST("/login", append(limited, d.loginPost)...)
	router.POST("/login/signup", append(limited, d.signupPost)...)
	router.POST("/logout", d.logout)

	dashboardGroup := router.Group("/dashboard")
	dashboardGroup.Use(d.requireAuth)
	{
		dashboardGroup.GET("", d.index)
		dashboardGroup.GET("/blog", d.listPosts)
		dashboardGroup.GET("/blog/new", d.newPost)
		dashboardGroup.POST("/blog/new", d.createPost)
		dashboardGroup.GET("/blog/edit/:id", d.editPost)
		dashboardGroup.POST("/blog/edit/:id", d.updatePost)
		dashboardGroup.POST("/blog/delete/:id", d.deletePost)
		dashboardGroup.GET("/portfolio", d.portfolio)
		dashboardGroup.GET("/seo-enhancer", d.seoPage)
		dashboardGroup.POST("/seo-enhancer", d.seoPost)
	}
}

func (d *DashboardModule) requireAuth(c *gin.Context) {
	if auth.SessionUserID(c) == "" {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (d *DashboardModule) index(c *gin.Context) {
	userID := auth.SessionUserID(c)
	items, err := d.posts.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing posts for %s: %v", userID, err)
		auth.AddFlash(c, auth.FlashError, err.Error())
	}

	stats := views.DashboardStats{Posts: len(items)}
	var slugs []string
	for _, p := range items {
		if p.Status == models.StatusPublished {
			stats.Published++
		} else {
			stats.Drafts++
		}
		slugs = append(slugs, p.Slug)
	}

	counts, err := d.tracker.CountBySlug(c.Request.Context(), slugs)
	if err != nil {
		log.Printf("Error counting views for %s: %v", userID, err)
	}
	for _, n := range counts {
		stats.Views += n
	}
	if stats.Daily, err = d.tracker.ViewsByDay(c.Request.Context(), slugs, 7); err != nil {
		log.Printf("Error loading daily views for %s: %v", userID, err)
	}

	views.Render(c, http.StatusOK, views.DashboardPage(views.DashboardProps(c, "Dashboard"), auth.SessionUserName(c), stats))
}

func (d *DashboardModule) listPosts(c *gin.Context) {
	userID := auth.SessionUserID(c)
	items, err := d.posts.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing posts for %s: %v", userID, err)
		props := views.DashboardProps(c, "Blog posts")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: err.Error()})
		views.Render(c, http.StatusInternalServerError, views.PostListPage(props, nil))
		return
	}
	views.Render(c, http.StatusOK, views.PostListPage(views.DashboardProps(c, "Blog posts"), items))
}

func (d *DashboardModule) newPost(c *gin.Context) {
	views.Render(c, http.StatusOK, views.PostFormPage(views.DashboardProps(c, "New post"), views.PostForm{}))
}

// uploadProgress logs an upload in quarter steps.
func uploadProgress(name string) storage.ProgressFunc {
	var logged int64 = -1
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		step := written * 4 / total
		if step == logged {
			return
		}
		logged = step
		log.Printf("Uploading %s: %d%%", name, written*100/total)
	}
}

// formImage returns the uploaded image, or nil when the form has none.
func formImage(c *gin.Context) *multipart.FileHeader {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return fh
}

func (d *DashboardModule) createPost(c *gin.Context) {
	userID := auth.SessionUserID(c)
	author, err := d.accounts.Get(c.Request.Context(), userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		if err := auth.SignOut(c); err != nil {
			log.Printf("Error clearing session for missing user %s: %v", userID, err)
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		log.Printf("Error loading user %s: %v", userID, err)
		auth.AddFlash(c, auth.FlashError, err.Error())
		c.Redirect(http.StatusFound, "/dashboard/blog")
		return
	}

	in := posts.CreateInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Image:   formImage(c),
	}
	if in.Image != nil {
		in.Progress = uploadProgress(in.Image.Filename)
	}
	form := views.PostForm{Title: in.Title, Content: in.Content}

	_, err = d.posts.Create(c.Request.Context(), author, in)
	var verr *posts.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = verr.Fields
		views.Render(c, http.StatusUnprocessableEntity, views.PostFormPage(views.DashboardProps(c, "New post"), form))
	case err != nil:
		log.Printf("Error creating post: %v", err)
		props := views.DashboardProps(c, "New post")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: "Post Creation Failed: " + err.Error()})
		views.Render(c, http.StatusInternalServerError, views.PostFormPage(props, form))
	default:
		auth.AddFlash(c, auth.FlashSuccess, "Your new post has been saved as a draft.")
		c.Redirect(http.StatusFound, "/dashboard/blog")
	}
}

// accessFailed answers a failed lookup or authorization for a post and
// reports whether it did.
func accessFailed(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrNotFound):
		auth.AddFlash(c, auth.FlashError, "Post not found.")
	case errors.Is(err, auth.ErrNotOwner), errors.Is(err, store.ErrForbidden):
		auth.AddFlash(c, auth.FlashError, notOwnerMessage)
	default:
		log.Printf("Error loading post %s: %v", c.Param("id"), err)
		auth.AddFlash(c, auth.FlashError, err.Error())
	}
	c.Redirect(http.StatusFound, "/dashboard/blog")
	return true
}

func (d *DashboardModule) editPost(c *gin.Context) {
	post, err := d.posts.GetForEdit(c.Request.Context(), auth.SessionUserID(c), c.Param("id"))
	if accessFailed(c, err) {
		return
	}

	form := views.PostForm{
		ID:       post.ID,
		Title:    post.Title,
		Content:  post.Content,
		Status:   post.Status,
		ImageURL: post.ImageURL,
	}
	views.Render(c, http.StatusOK, views.PostFormPage(views.DashboardProps(c, "Edit post"), form))
}

func (d *DashboardModule) updatePost(c *gin.Context) {
	userID := auth.SessionUserID(c)
	post, err := d.posts.GetForEdit(c.Request.Context(), userID, c.Param("id"))
	if accessFailed(c, err) {
		return
	}

	in := posts.UpdateInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Status:  models.Status(c.PostForm("status")),
		Image:   formImage(c),
	}
	if in.Image != nil {
		in.Progress = uploadProgress(in.Image.Filename)
	}
	form := views.PostForm{
		ID:       post.ID,
		Title:    in.Title,
		Content:  in.Content,
		Status:   in.Status,
		ImageURL: post.ImageURL,
	}

	updated, err := d.posts.Update(c.Request.Context(), userID, post.ID, in)
	var verr *posts.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = verr.Fields
		views.Render(c, http.StatusUnprocessableEntity, views.PostFormPage(views.DashboardProps(c, "Edit post"), form))
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForbidden), errors.Is(err, auth.ErrNotOwner):
		accessFailed(c, err)
	case err != nil:
		log.Printf("Error updating post %s: %v", post.ID, err)
		props := views.DashboardProps(c, "Edit post")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: "Post Update Failed: " + err.Error()})
		views.Render(c, http.StatusInternalServerError, views.PostFormPage(props, form))
	default:
		auth.AddFlash(c, auth.FlashSuccess, "Post \""+updated.Title+"\" updated.")
		c.Redirect(http.StatusFound, "/dashboard/blog")
	}
}

func (d *DashboardModule) deletePost(c *gin.Context) {
	err := d.posts.Delete(c.Request.Context(), auth.SessionUserID(c), c.Param("id"))
	if accessFailed(c, err) {
		return
	}
	auth.AddFlash(c, auth.FlashSuccess, "Post deleted.")
	c.Redirect(http.StatusFound, "/dashboard/blog")
}

func (d *DashboardModule) portfolio(c *gin.Context) {
	userID := auth.SessionUserID(c)
	items, err := d.posts.ListPortfolio(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing portfolio for %s: %v", userID, err)
		props := views.DashboardProps(c, "Portfolio")
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: err.Error()})
		views.Render(c, http.StatusInternalServerError, views.PortfolioPage(props, nil))
		return
	}
	views.Render(c, http.StatusOK, views.PortfolioPage(views.DashboardProps(c, "Portfolio"), items))
}

func (d *DashboardModule) seoPage(c *gin.Context) {
	form := views.SEOForm{Disabled: d.seo == nil}
	views.Render(c, http.StatusOK, views.SEOEnhancerPage(views.DashboardProps(c, "SEO enhancer"), form))
}

func (d *DashboardModule) seoPost(c *gin.Context) {
	in := seo.Input{
		Content:  c.PostForm("content"),
		Keywords: c.PostForm("keywords"),
	}
	form := views.SEOForm{Content: in.Content, Keywords: in.Keywords, Disabled: d.seo == nil}
	props := views.DashboardProps(c, "SEO enhancer")

	if d.seo == nil {
		views.Render(c, http.StatusServiceUnavailable, views.SEOEnhancerPage(props, form))
		return
	}
	if msg := seo.ValidateInput(in); msg != "" {
		form.FieldError = msg
		views.Render(c, http.StatusUnprocessableEntity, views.SEOEnhancerPage(props, form))
		return
	}

	out, err := d.seo.Enhance(c.Request.Context(), in)
	if err != nil {
		log.Printf("Error enhancing content: %v", err)
		props.Flashes = append(props.Flashes, auth.Flash{Kind: auth.FlashError, Message: "SEO Enhancement Failed: " + err.Error()})
		views.Render(c, http.StatusBadGateway, views.SEOEnhancerPage(props, form))
		return
	}

	form.Result = out
	views.Render(c, http.StatusOK, views.SEOEnhancerPage(props, form))
}
