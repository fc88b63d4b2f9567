// Package posts is the adapter between the dashboard forms and the
// document and object stores.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"sort"
	"time"

	"github.com/google/uuid"

	"prolific/auth"
	"prolific/models"
	"prolific/permissions"
	"prolific/storage"
	"prolific/store"
)

var ErrUploadFailed = errors.New("failed to upload image")

// Invalidator is told about a slug whose public page changed.
type Invalidator interface {
	Clear(slug string) error
}

type Service struct {
	docs        store.DocumentStore
	files       storage.ObjectStore
	invalidator Invalidator
	retry       RetryPolicy
	now         func() time.Time
}

func NewService(docs store.DocumentStore, files storage.ObjectStore) *Service {
	return &Service{
		docs:  docs,
		files: files,
		retry: DefaultRetry,
		now:   time.Now,
	}
}

func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

func (s *Service) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

func (s *Service) invalidate(slug string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Clear(slug); err != nil {
		log.Printf("Error clearing cache for %s: %v", slug, err)
	}
}

func (s *Service) upload(ctx context.Context, ownerID string, fh *multipart.FileHeader, progress storage.ProgressFunc) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer f.Close()

	fileID, err := s.files.CreateFile(ctx, ownerID, f, fh.Size, progress)
	if err != nil {
		log.Printf("Error uploading file: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return s.files.FileViewURL(fileID), nil
}

// Create stores a new draft owned by author. Nothing is uploaded or stored
// unless the input is valid.
func (s *Service) Create(ctx context.Context, author *models.User, in CreateInput) (*models.Post, error) {
	if author == nil || author.ID == "" {
		return nil, auth.ErrNotOwner
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	imageURL, err := s.upload(ctx, author.ID, in.Image, in.Progress)
	if err != nil {
		return nil, err
	}

	authorName := author.Name
	if authorName == "" {
		authorName = "Anonymous"
	}
	now := s.now()
	post := &models.Post{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Content:     in.Content,
		Slug:        Slugify(in.Title),
		ImageURL:    imageURL,
		AuthorName:  authorName,
		AuthorID:    author.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      models.StatusDraft,
		Permissions: permissions.ForPost(author.ID, models.StatusDraft),
	}

	err = s.retry.Do(ctx, func() error {
		return s.docs.Create(ctx, post)
	})
	if err != nil {
		log.Printf("Error creating blog post document: %v", err)
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}
	log.Printf("Blog post created with ID %s", post.ID)
	return post, nil
}

// GetForEdit loads a post the user may edit.
func (s *Service) GetForEdit(ctx context.Context, userID, id string) (*models.Post, error) {
	post, err := s.docs.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckOwnership(userID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies the edit form to an owned post. The slug and creation time
// never change; permissions follow the new status.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Post, error) {
	post, err := s.GetForEdit(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Image != nil {
		imageURL, err := s.upload(ctx, userID, in.Image, in.Progress)
		if err != nil {
			return nil, err
		}
		post.ImageURL = imageURL
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Status = in.Status
	post.Permissions = permissions.ForPost(post.AuthorID, in.Status)
	post.UpdatedAt = s.now()

	if err := s.docs.Update(ctx, post, userID); err != nil {
		return nil, err
	}
	s.invalidate(post.Slug)
	return post, nil
}

// Delete removes an owned post. Its cover image stays in the object store.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	post, err := s.GetForEdit(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(post.Slug)
	return nil
}

func (s *Service) ListByAuthor(ctx context.Context, userID string) ([]models.Post, error) {
	return s.docs.List(ctx, store.Query{
		AuthorID: userID,
		Viewer:   userID,
		Limit:    store.MaxLimit,
	})
}

// ListPortfolio returns the author's items, most recently updated first.
func (s *Service) ListPortfolio(ctx context.Context, userID string) ([]models.Post, error) {
	items, err := s.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

func (s *Service) ListPublished(ctx context.Context) ([]models.Post, error) {
	return s.docs.List(ctx, store.Query{
		Status: models.StatusPublished,
		Limit:  store.MaxLimit,
	})
}

// GetPublishedBySlug returns store.ErrNotFound for drafts, so the public
// page never shows unpublished content, even to its author.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	found, err := s.docs.List(ctx, store.Query{
		Slug:   slug,
		Status: models.StatusPublished,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, store.ErrNotFound
	}
	return &found[0], nil
}
