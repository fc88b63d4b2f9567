package posts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"prolific/auth"
	"prolific/models"
	"prolific/permissions"
	"prolific/storage"
	"prolific/store"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

const longContent = "This is a long enough body of text to pass the fifty character minimum."

type spyStore struct {
	store.DocumentStore
	creates    int
	updates    int
	createErrs []error
}

func (s *spyStore) Create(ctx context.Context, post *models.Post) error {
	s.creates++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return err
	}
	return s.DocumentStore.Create(ctx, post)
}

func (s *spyStore) Update(ctx context.Context, post *models.Post, actor string) error {
	s.updates++
	return s.DocumentStore.Update(ctx, post, actor)
}

type fakeFiles struct {
	uploads int
	err     error
}

func (f *fakeFiles) CreateFile(ctx context.Context, ownerID string, r io.Reader, size int64, progress storage.ProgressFunc) (string, error) {
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	if progress != nil {
		progress(size, size)
	}
	return "file-" + ownerID, nil
}

func (f *fakeFiles) FileViewURL(fileID string) string {
	return "/files/" + fileID
}

func (f *fakeFiles) Open(fileID string) (io.ReadSeekCloser, error) {
	return nil, storage.ErrFileNotFound
}

type recordingInvalidator struct {
	slugs []string
}

func (r *recordingInvalidator) Clear(slug string) error {
	r.slugs = append(r.slugs, slug)
	return nil
}

func setupService(t *testing.T) (*Service, *spyStore, *fakeFiles) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}))

	docs := &spyStore{DocumentStore: store.NewSQLStore(db)}
	files := &fakeFiles{}
	svc := NewService(docs, files)
	svc.SetRetryPolicy(RetryPolicy{Retries: 3, Delay: time.Millisecond, Factor: 1.5})
	return svc, docs, files
}

func imageHeader(t *testing.T) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

var alice = &models.User{ID: "alice", Name: "Alice"}

func createDraft(t *testing.T, svc *Service, title string) *models.Post {
	post, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   title,
		Content: longContent,
		Image:   imageHeader(t),
	})
	require.NoError(t, err)
	return post
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Getting Started With Next.js!!", "getting-started-with-nextjs"},
		{"  Hello   World  ", "hello-world"},
		{"Go - the language", "go-the-language"},
		{"snake_case stays", "snake_case-stays"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}

func TestCreate_ValidationHappensBeforeAnyCall(t *testing.T) {
	svc, docs, files := setupService(t)

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "A valid title",
		Content: longContent,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Image is required", verr.Fields["image"])
	assert.Zero(t, files.uploads)
	assert.Zero(t, docs.creates)
}

func TestCreate_FieldMessages(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "Hey",
		Content: "too short",
		Image:   imageHeader(t),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title must be at least 5 characters", verr.Fields["title"])
	assert.Equal(t, "Content must be at least 50 characters", verr.Fields["content"])
	assert.NotContains(t, verr.Fields, "image")
}

func TestCreate_TitleWithoutSlug(t *testing.T) {
	svc, docs, _ := setupService(t)

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "?????",
		Content: longContent,
		Image:   imageHeader(t),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title must contain letters or numbers", verr.Fields["title"])
	assert.Zero(t, docs.creates)
}

func TestImageMessage(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{storage.ErrImageRequired, "Image is required"},
		{storage.ErrImageTooLarge, "Max file size is 5MB."},
		{storage.ErrImageBadFormat, ".jpg, .jpeg, .png and .webp files are accepted."},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, strings.ToLower(tt.err.Error()), tt.err.Error())
			assert.Equal(t, tt.expected, imageMessage(tt.err))
		})
	}
}

func TestCreate_StoresDraft(t *testing.T) {
	svc, _, files := setupService(t)
	var progressed int64
	post, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "Getting Started With Next.js!!",
		Content: longContent,
		Image:   imageHeader(t),
		Progress: func(written, total int64) {
			progressed = written
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, files.uploads)
	assert.Equal(t, int64(len(pngBytes)), progressed)
	assert.Equal(t, "getting-started-with-nextjs", post.Slug)
	assert.Equal(t, "/files/file-alice", post.ImageURL)
	assert.Equal(t, "Alice", post.AuthorName)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	assert.False(t, permissions.IsPublic(post.Permissions))
}

func TestCreate_UploadFailure(t *testing.T) {
	svc, docs, files := setupService(t)
	files.err = errors.New("disk full")

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "A valid title",
		Content: longContent,
		Image:   imageHeader(t),
	})
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Zero(t, docs.creates)
}

func TestCreate_RetriesTransientErrors(t *testing.T) {
	svc, docs, _ := setupService(t)
	docs.createErrs = []error{
		errors.New("network unreachable"),
		errors.New("request timeout"),
	}

	post := createDraft(t, svc, "Retried post")
	assert.Equal(t, 3, docs.creates)

	got, err := svc.GetForEdit(context.Background(), "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retried post", got.Title)
}

func TestCreate_GivesUpAfterRetries(t *testing.T) {
	svc, docs, _ := setupService(t)
	docs.createErrs = []error{
		errors.New("network 1"),
		errors.New("network 2"),
		errors.New("network 3"),
		errors.New("network 4"),
	}

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "Never stored",
		Content: longContent,
		Image:   imageHeader(t),
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to create blog post: network 4"))
	assert.Equal(t, 4, docs.creates)
}

func TestCreate_DoesNotRetryOtherErrors(t *testing.T) {
	svc, docs, _ := setupService(t)
	docs.createErrs = []error{errors.New("constraint failed")}

	_, err := svc.Create(context.Background(), alice, CreateInput{
		Title:   "Bad insert",
		Content: longContent,
		Image:   imageHeader(t),
	})
	require.Error(t, err)
	assert.Equal(t, 1, docs.creates)
}

func TestRetryPolicy_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{Retries: 3, Delay: time.Hour, Factor: 1.5}.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("network down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestUpdate_NonOwnerNeverPersists(t *testing.T) {
	svc, docs, files := setupService(t)
	post := createDraft(t, svc, "Owned by Alice")

	in := UpdateInput{Title: "Taken over", Content: longContent, Status: models.StatusPublished}

	// a draft is invisible to others
	_, err := svc.Update(context.Background(), "mallory", post.ID, in)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// once published it is readable but still not editable
	_, err = svc.Update(context.Background(), "alice", post.ID, UpdateInput{Title: post.Title, Content: longContent, Status: models.StatusPublished})
	require.NoError(t, err)
	updatesBefore := docs.updates

	_, err = svc.Update(context.Background(), "mallory", post.ID, UpdateInput{Title: "Taken over", Content: longContent, Status: models.StatusDraft, Image: imageHeader(t)})
	assert.ErrorIs(t, err, auth.ErrNotOwner)
	assert.Equal(t, updatesBefore, docs.updates)
	assert.Equal(t, 1, files.uploads)

	got, err := svc.GetPublishedBySlug(context.Background(), post.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Owned by Alice", got.Title)
}

func TestUpdate_KeepsSlugAndImage(t *testing.T) {
	svc, _, files := setupService(t)
	inv := &recordingInvalidator{}
	svc.SetInvalidator(inv)
	post := createDraft(t, svc, "Original title")

	updated, err := svc.Update(context.Background(), "alice", post.ID, UpdateInput{
		Title:   "A completely new title",
		Content: longContent + " Edited.",
		Status:  models.StatusDraft,
	})
	require.NoError(t, err)

	assert.Equal(t, "original-title", updated.Slug)
	assert.Equal(t, post.ImageURL, updated.ImageURL)
	assert.Equal(t, 1, files.uploads)
	assert.True(t, post.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, []string{"original-title"}, inv.slugs)
}

func TestUpdate_InvalidInput(t *testing.T) {
	svc, docs, _ := setupService(t)
	post := createDraft(t, svc, "Valid title")

	_, err := svc.Update(context.Background(), "alice", post.ID, UpdateInput{
		Title:   "Valid title",
		Content: longContent,
		Status:  "archived",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
	assert.Zero(t, docs.updates)
}

func TestUpdate_TitleWithoutSlug(t *testing.T) {
	svc, docs, _ := setupService(t)
	post := createDraft(t, svc, "Valid title")

	_, err := svc.Update(context.Background(), "alice", post.ID, UpdateInput{
		Title:   "!!! ... !!!",
		Content: longContent,
		Status:  "draft",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title must contain letters or numbers", verr.Fields["title"])
	assert.Zero(t, docs.updates)
}

func TestPublishLifecycle(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	post := createDraft(t, svc, "Lifecycle post")

	listed, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
	_, err = svc.GetPublishedBySlug(ctx, post.Slug)
	assert.ErrorIs(t, err, store.ErrNotFound)

	published, err := svc.Update(ctx, "alice", post.ID, UpdateInput{Title: post.Title, Content: post.Content, Status: models.StatusPublished})
	require.NoError(t, err)
	assert.True(t, permissions.IsPublic(published.Permissions))

	listed, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, permissions.IsPublic(listed[0].Permissions))
	got, err := svc.GetPublishedBySlug(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	unpublished, err := svc.Update(ctx, "alice", post.ID, UpdateInput{Title: post.Title, Content: post.Content, Status: models.StatusDraft})
	require.NoError(t, err)
	assert.False(t, permissions.IsPublic(unpublished.Permissions))

	listed, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
	_, err = svc.GetPublishedBySlug(ctx, post.Slug)
	assert.ErrorIs(t, err, store.ErrNotFound)

	own, err := svc.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.False(t, permissions.IsPublic(own[0].Permissions))
}

func TestDelete(t *testing.T) {
	svc, _, _ := setupService(t)
	inv := &recordingInvalidator{}
	svc.SetInvalidator(inv)
	ctx := context.Background()
	post := createDraft(t, svc, "Short lived")

	assert.ErrorIs(t, svc.Delete(ctx, "mallory", post.ID), store.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "alice", post.ID))
	assert.Equal(t, []string{"short-lived"}, inv.slugs)

	own, err := svc.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, own)
}
