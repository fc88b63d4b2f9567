package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"prolific/models"
	"prolific/permissions"
)

const postKeyPrefix = "post:"

// BadgerStore keeps posts as JSON values under post:<id> keys.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens (or creates) a badger database at path with badger's own
// logging silenced.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	return badger.Open(opts)
}

func postKey(id string) []byte {
	return []byte(postKeyPrefix + id)
}

func readPost(txn *badger.Txn, id string) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var post models.Post
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &post)
	})
	if err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	return &post, nil
}

func writePost(txn *badger.Txn, post *models.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	return txn.Set(postKey(post.ID), data)
}

func (s *BadgerStore) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return writePost(txn, post)
	})
}

func (s *BadgerStore) Get(ctx context.Context, id, viewer string) (*models.Post, error) {
	var post *models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = readPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !permissions.Allows(post.Permissions, models.CapabilityRead, viewer) {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *BadgerStore) List(ctx context.Context, q Query) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(postKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &post)
			})
			if err != nil {
				return fmt.Errorf("decode post: %w", err)
			}
			if q.matches(&post) {
				posts = append(posts, post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q.finish(posts), nil
}

func (s *BadgerStore) Update(ctx context.Context, post *models.Post, actor string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stored, err := readPost(txn, post.ID)
		if err != nil {
			return err
		}
		if !permissions.Allows(stored.Permissions, models.CapabilityUpdate, actor) {
			return ErrForbidden
		}
		return writePost(txn, post)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, id, actor string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stored, err := readPost(txn, id)
		if err != nil {
			return err
		}
		if !permissions.Allows(stored.Permissions, models.CapabilityDelete, actor) {
			return ErrForbidden
		}
		return txn.Delete(postKey(id))
	})
}
