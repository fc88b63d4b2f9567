package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Capability string

const (
	CapabilityRead   Capability = "read"
	CapabilityUpdate Capability = "update"
	CapabilityDelete Capability = "delete"
)

// Principal is either "any" or "user:<id>".
type Principal string

const PrincipalAny Principal = "any"

func UserPrincipal(userID string) Principal {
	return Principal("user:" + userID)
}

type Grant struct {
	Capability Capability `json:"capability"`
	Principal  Principal  `json:"principal"`
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // never exposed
	CreatedAt    time.Time `json:"created_at"`
}

type Post struct {
	ID          string                     `gorm:"primaryKey;size:36" json:"id"`
	Title       string                     `gorm:"not null" json:"title"`
	Content     string                     `gorm:"type:text" json:"content"`
	Slug        string                     `gorm:"not null;index" json:"slug"`
	ImageURL    string                     `json:"imageUrl"`
	AuthorName  string                     `json:"authorName"`
	AuthorID    string                     `gorm:"not null;index" json:"authorId"`
	CreatedAt   time.Time                  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                  `gorm:"autoUpdateTime:false" json:"updatedAt"`
	Status      Status                     `gorm:"not null;index;default:draft" json:"status"`
	Permissions datatypes.JSONSlice[Grant] `json:"permissions"`
}

// Excerpt returns the first n runes of the content on a single line.
func (p *Post) Excerpt(n int) string {
	text := strings.Join(strings.Fields(p.Content), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
