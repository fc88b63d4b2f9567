// Package storage is the object store for uploaded cover images.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"prolific/models"
	"prolific/permissions"
)

var ErrFileNotFound = errors.New("file not found")

// ProgressFunc receives the number of bytes written so far and the expected
// total. total is 0 when the size is unknown.
type ProgressFunc func(written, total int64)

type ObjectStore interface {
	CreateFile(ctx context.Context, ownerID string, r io.Reader, size int64, progress ProgressFunc) (string, error)
	FileViewURL(fileID string) string
	Open(fileID string) (io.ReadSeekCloser, error)
}

// Disk stores each file as <dir>/<id> with its permission descriptor in
// <dir>/<id>.json.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

type progressWriter struct {
	written  int64
	total    int64
	progress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	p.progress(p.written, p.total)
	return len(b), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}

func (d *Disk) path(fileID string) (string, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return "", ErrFileNotFound
	}
	return filepath.Join(d.dir, fileID), nil
}

func (d *Disk) CreateFile(ctx context.Context, ownerID string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	fileID := uuid.NewString()
	target := filepath.Join(d.dir, fileID)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var w io.Writer = f
	if progress != nil {
		w = io.MultiWriter(f, &progressWriter{total: size, progress: progress})
	}

	if _, err := io.Copy(w, ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close file: %w", err)
	}

	meta, err := json.Marshal(permissions.ForFile(ownerID))
	if err != nil {
		os.Remove(target)
		return "", err
	}
	if err := os.WriteFile(target+".json", meta, 0o644); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write file permissions: %w", err)
	}
	return fileID, nil
}

func (d *Disk) FileViewURL(fileID string) string {
	return "/files/" + fileID
}

// Open returns a publicly readable file. Files whose descriptor has no
// public read grant are reported as missing.
func (d *Disk) Open(fileID string) (io.ReadSeekCloser, error) {
	p, err := d.path(fileID)
	if err != nil {
		return nil, err
	}

	meta, err := os.ReadFile(p + ".json")
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	var grants []models.Grant
	if err := json.Unmarshal(meta, &grants); err != nil {
		return nil, fmt.Errorf("decode file permissions: %w", err)
	}
	if !permissions.IsPublic(grants) {
		return nil, ErrFileNotFound
	}

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
