// Package store holds the document store used for blog posts. Both
// backends enforce the permission descriptor saved with each document.
package store

import (
	"context"
	"errors"
	"sort"

	"prolific/models"
	"prolific/permissions"
)

// MaxLimit bounds every listing.
const MaxLimit = 100

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("missing permission on document")
)

// Query filters a listing. Zero fields are ignored. Viewer is the principal
// whose read grants decide visibility; empty means anonymous.
type Query struct {
	AuthorID string
	Status   models.Status
	Slug     string
	Viewer   string
	Limit    int
}

type DocumentStore interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id, viewer string) (*models.Post, error)
	List(ctx context.Context, q Query) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post, actor string) error
	Delete(ctx context.Context, id, actor string) error
}

func (q Query) limit() int {
	if q.Limit <= 0 || q.Limit > MaxLimit {
		return MaxLimit
	}
	return q.Limit
}

func (q Query) matches(p *models.Post) bool {
	if q.AuthorID != "" && p.AuthorID != q.AuthorID {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Slug != "" && p.Slug != q.Slug {
		return false
	}
	return permissions.Allows(p.Permissions, models.CapabilityRead, q.Viewer)
}

// finish orders by creation time, newest first, and applies the limit.
func (q Query) finish(posts []models.Post) []models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if n := q.limit(); len(posts) > n {
		posts = posts[:n]
	}
	return posts
}
