// Package analytics counts visits to public post pages.
package analytics

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	visitorCookie = "prolific_visitor_id"
	visitWindow   = 30 * time.Minute
)

// PostView is one counted visit to /blog/:slug.
type PostView struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Slug      string    `gorm:"not null;index"`
	VisitorID string    `gorm:"not null;index"`
	Browser   *string
	Language  *string
	CreatedAt time.Time `gorm:"index"`
}

// Tracker records post views. A nil *Tracker is valid and records nothing.
type Tracker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTracker(db *gorm.DB) (*Tracker, error) {
	if err := db.AutoMigrate(&PostView{}); err != nil {
		return nil, err
	}
	log.Println("Analytics tracker initialized")
	return &Tracker{db: db, now: time.Now}, nil
}

// Middleware counts successful responses for the :slug route it wraps,
// cached ones included. Repeat visits by the same visitor within 30 minutes
// count once.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t == nil {
			c.Next()
			return
		}
		visitorID := visitorID(c)
		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		if err := t.TrackView(c.Request.Context(), c.Param("slug"), visitorID, c.Request.UserAgent(), c.GetHeader("Accept-Language")); err != nil {
			log.Printf("Error saving post view: %v", err)
		}
	}
}

// TrackView stores a view unless the visitor saw the slug recently.
func (t *Tracker) TrackView(ctx context.Context, slug, visitorID, userAgent, acceptLanguage string) error {
	if t == nil || slug == "" {
		return nil
	}
	now := t.now()

	var recent int64
	err := t.db.WithContext(ctx).Model(&PostView{}).
		Where("slug = ? AND visitor_id = ? AND created_at > ?", slug, visitorID, now.Add(-visitWindow)).
		Count(&recent).Error
	if err != nil {
		return err
	}
	if recent > 0 {
		return nil
	}

	return t.db.WithContext(ctx).Create(&PostView{
		Slug:      slug,
		VisitorID: visitorID,
		Browser:   browserName(userAgent),
		Language:  preferredLanguage(acceptLanguage),
		CreatedAt: now,
	}).Error
}

func visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(visitorCookie, id, 60*60*24*365*2, "/", "", false, true)
	return id
}

func browserName(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string
	// order matters: Edge and Opera also announce Chrome
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	default:
		browser = "Other"
	}
	return &browser
}

// preferredLanguage returns the first tag of an Accept-Language header.
func preferredLanguage(header string) *string {
	if header == "" {
		return nil
	}
	lang := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	if lang == "" {
		return nil
	}
	return &lang
}

type DayViews struct {
	Date  string
	Count int64
}

// CountBySlug returns the total views of each slug.
func (t *Tracker) CountBySlug(ctx context.Context, slugs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(slugs))
	if t == nil || len(slugs) == 0 {
		return counts, nil
	}

	var rows []struct {
		Slug  string
		Count int64
	}
	err := t.db.WithContext(ctx).Model(&PostView{}).
		Select("slug, COUNT(*) as count").
		Where("slug IN ?", slugs).
		Group("slug").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.Slug] = r.Count
	}
	return counts, nil
}

// ViewsByDay returns one entry per day for the last days days, oldest
// first, with zero for days without views.
func (t *Tracker) ViewsByDay(ctx context.Context, slugs []string, days int) ([]DayViews, error) {
	if t == nil || days <= 0 {
		return nil, nil
	}
	now := t.now()

	out := make([]DayViews, days)
	for i := range out {
		out[i].Date = now.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
	}
	if len(slugs) == 0 {
		return out, nil
	}

	var views []PostView
	err := t.db.WithContext(ctx).
		Select("created_at").
		Where("slug IN ? AND created_at >= ?", slugs, now.AddDate(0, 0, -days)).
		Find(&views).Error
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, days)
	for i, d := range out {
		index[d.Date] = i
	}
	for _, v := range views {
		if i, ok := index[v.CreatedAt.In(now.Location()).Format("2006-01-02")]; ok {
			out[i].Count++
		}
	}
	return out, nil
}
