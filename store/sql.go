package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prolific/models"
	"prolific/permissions"
)

// SQLStore keeps posts in the relational database through gorm.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *SQLStore) find(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (s *SQLStore) Get(ctx context.Context, id, viewer string) (*models.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permissions.Allows(post.Permissions, models.CapabilityRead, viewer) {
		return nil, ErrNotFound
	}
	return post, nil
}

// List narrows by the indexed columns in SQL; read grants are evaluated on
// the decoded descriptor.
func (s *SQLStore) List(ctx context.Context, q Query) ([]models.Post, error) {
	tx := s.db.WithContext(ctx).Model(&models.Post{})
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Slug != "" {
		tx = tx.Where("slug = ?", q.Slug)
	}

	// Published posts and the viewer's own posts are always readable, so the
	// grant filter below cannot drop rows and the limit can go to SQL.
	if q.Status == models.StatusPublished || (q.AuthorID != "" && q.AuthorID == q.Viewer) {
		tx = tx.Limit(q.limit())
	}

	var rows []models.Post
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	for i := range rows {
		if q.matches(&rows[i]) {
			posts = append(posts, rows[i])
		}
	}
	return q.finish(posts), nil
}

func (s *SQLStore) Update(ctx context.Context, post *models.Post, actor string) error {
	stored, err := s.find(ctx, post.ID)
	if err != nil {
		return err
	}
	if !permissions.Allows(stored.Permissions, models.CapabilityUpdate, actor) {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id, actor string) error {
	stored, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !permissions.Allows(stored.Permissions, models.CapabilityDelete, actor) {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
