package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the upper bound for cover images.
const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

var (
	ErrImageRequired  = errors.New("image is required")
	ErrImageTooLarge  = errors.New("image exceeds 5MB")
	ErrImageBadFormat = errors.New("unsupported image format")
)

func allowedType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	for _, t := range allowedImageTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// ValidateImage checks a cover image before it is handed to an ObjectStore.
// The declared content type must be allowed and so must the sniffed one.
func ValidateImage(fh *multipart.FileHeader) error {
	if fh == nil || fh.Size == 0 {
		return ErrImageRequired
	}
	if fh.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" && !allowedType(declared) {
		return ErrImageBadFormat
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("detect image type: %w", err)
	}
	if !allowedType(mtype.String()) {
		return ErrImageBadFormat
	}
	return nil
}
