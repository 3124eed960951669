package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

const (
	thumbPrefix        = "thumb:"
	thumbByOwnerPrefix = "thumb_owner:" // For listing a user's thumbnails
)

// CreateThumbnail persists a new generation record. The record is
// written before any provider call so clients can poll it by ID
// while the image is still being generated.
func (s *Store) CreateThumbnail(_ context.Context, thumb *domain.Thumbnail) error {
	key := []byte(thumbPrefix + thumb.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check thumbnail exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	ownerKey := []byte(thumbByOwnerPrefix + thumb.OwnerID + ":" + thumb.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(thumb)
		if err != nil {
			return fmt.Errorf("marshal thumbnail: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Owner index for listing a user's records
		if err := txn.Set(ownerKey, []byte{}); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.indexThumbnailAsync(thumb)

	return nil
}

// GetThumbnail retrieves a record by ID regardless of owner.
// Owner-scoped reads should go through GetUserThumbnail.
func (s *Store) GetThumbnail(_ context.Context, id string) (*domain.Thumbnail, error) {
	key := buildKey(thumbPrefix, id)
	defer releaseKey(key)

	var thumb domain.Thumbnail
	if err := s.get(key, &thumb); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}

	return &thumb, nil
}

// GetUserThumbnail retrieves a record by ID scoped to its owner.
// A record owned by someone else is indistinguishable from a missing
// one: both return ErrNotFound.
func (s *Store) GetUserThumbnail(ctx context.Context, ownerID, id string) (*domain.Thumbnail, error) {
	thumb, err := s.GetThumbnail(ctx, id)
	if err != nil {
		return nil, err
	}
	if thumb.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return thumb, nil
}

// UpdateThumbnail persists changes to an existing record.
// Returns ErrNotFound if the record does not exist. The owner never
// changes, so no index migration is needed.
func (s *Store) UpdateThumbnail(_ context.Context, thumb *domain.Thumbnail) error {
	key := []byte(thumbPrefix + thumb.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check thumbnail exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(thumb)
		if err != nil {
			return fmt.Errorf("marshal thumbnail: %w", err)
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.indexThumbnailAsync(thumb)

	return nil
}

// DeleteThumbnail removes a record and its owner index.
// This operation is idempotent - deleting a missing record is not an error.
func (s *Store) DeleteThumbnail(_ context.Context, id string) error {
	key := []byte(thumbPrefix + id)

	// Get record data to clean up the owner index
	var thumb domain.Thumbnail
	if err := s.get(key, &thumb); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already gone
		}
		return fmt.Errorf("get thumbnail for deletion: %w", err)
	}

	ownerKey := []byte(thumbByOwnerPrefix + thumb.OwnerID + ":" + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}

		if err := txn.Delete(ownerKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Remove from search asynchronously
	if s.searchIndexer != nil {
		go func() {
			if err := s.searchIndexer.RemoveThumbnail(context.Background(), id); err != nil {
				if s.logger != nil {
					s.logger.Warn("failed to remove thumbnail from search", "thumbnail_id", id, "error", err)
				}
			}
		}()
	}

	return nil
}

// ListUserThumbnails returns all records belonging to a user.
// Order is not guaranteed; callers sort.
func (s *Store) ListUserThumbnails(ctx context.Context, ownerID string) ([]*domain.Thumbnail, error) {
	prefix := []byte(thumbByOwnerPrefix + ownerID + ":")
	var thumbs []*domain.Thumbnail

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Extract thumbnail ID from key
			// Key format: thumb_owner:ownerID:thumbID
			key := string(it.Item().Key())
			thumbID := key[strings.LastIndex(key, ":")+1:]
			if thumbID == "" {
				continue
			}

			thumb, err := s.GetThumbnail(ctx, thumbID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue // Index key outlived the record
				}
				return err
			}

			thumbs = append(thumbs, thumb)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list user thumbnails: %w", err)
	}

	return thumbs, nil
}

// ListGeneratingOlderThan returns records still in the generating
// state whose CreatedAt is before the cutoff. The reconcile sweep uses
// this to fail records orphaned by a crash mid-generation.
func (s *Store) ListGeneratingOlderThan(_ context.Context, cutoff time.Time) ([]*domain.Thumbnail, error) {
	prefix := []byte(thumbPrefix)
	var stale []*domain.Thumbnail

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var thumb domain.Thumbnail
				if unmarshalErr := json.Unmarshal(val, &thumb); unmarshalErr != nil {
					// Skip malformed records - log but don't fail
					//nolint:nilerr // Intentionally returning nil to continue iteration
					return nil
				}

				if thumb.IsGenerating() && thumb.CreatedAt.Before(cutoff) {
					stale = append(stale, &thumb)
				}

				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("find stale thumbnails: %w", err)
	}

	return stale, nil
}

// indexThumbnailAsync pushes a record into the search index without
// blocking the write path. Failures are logged, never fatal.
func (s *Store) indexThumbnailAsync(thumb *domain.Thumbnail) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexThumbnail(context.Background(), thumb); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to index thumbnail for search", "thumbnail_id", thumb.ID, "error", err)
			}
		}
	}()
}
