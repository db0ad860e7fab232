package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"propboard/internal/domain"
)

// DefaultPrefix namespaces board keys so several boards can share one Redis.
const DefaultPrefix = "propboard:"

// BlobStore keeps each state blob as a plain string value:
//
//	SET {prefix}picks   <json>
//	SET {prefix}answers <json>
//
// Keys never expire. Concurrent reads of the same key share one round trip.
// Writes are last-writer-wins across processes.
type BlobStore struct {
	client *redis.Client
	prefix string
	sf     singleflight.Group
}

func NewBlobStore(client *redis.Client, prefix string) *BlobStore {
	return &BlobStore{
		client: client,
		prefix: prefix,
	}
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	// The shared read must outlive any single caller's context; each caller
	// still stops waiting when its own context ends.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		data, err := s.client.Get(flightCtx, s.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrBlobNotFound
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]byte(nil), res.Val.([]byte)...), nil
	}
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return err
	}
	// Reads that started before this write must not be shared with later callers.
	s.sf.Forget(key)
	return nil
}

func (s *BlobStore) key(key string) string {
	return s.prefix + key
}
