// Package cache keeps rendered public post pages on disk.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type Store struct {
	dir    string
	maxAge time.Duration

	mu  sync.Mutex
	gen map[string]uint64 // bumped by Clear
}

func New(dir string, maxAge time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, maxAge: maxAge, gen: map[string]uint64{}}, nil
}

// Path returns the cache file for a post slug. The slug is hashed so any
// value maps to a safe file name.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, generateHash(slug)+".html")
}

func generateHash(str string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(str))
}

func (s *Store) Write(slug string, html []byte) error {
	return os.WriteFile(s.Path(slug), html, 0644)
}

// generation reports how many times slug has been cleared.
func (s *Store) generation(slug string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[slug]
}

// writeIfCurrent stores html only if slug was not cleared since gen was
// taken, and reports whether it did.
func (s *Store) writeIfCurrent(slug string, gen uint64, html []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[slug] != gen {
		return false, nil
	}
	return true, os.WriteFile(s.Path(slug), html, 0644)
}

// Read returns the cached page if it exists and is not older than maxAge.
func (s *Store) Read(slug string) ([]byte, bool) {
	path := s.Path(slug)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > s.maxAge {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return content, true
}

// Clear drops the page for slug. A missing entry is not an error.
func (s *Store) Clear(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[slug]++
	err := os.Remove(s.Path(slug))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearOld removes entries older than maxAge.
func (s *Store) ClearOld() error {
	return filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if time.Since(info.ModTime()) > s.maxAge {
			os.Remove(path)
		}
		return nil
	})
}
