package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"propboard/internal/domain"
)

// Well-known blob keys. Each holds one whole structure and is replaced on every write.
const (
	PicksKey   = "picks"
	AnswersKey = "answers"
)

// BlobStore abstracts where state blobs live (memory, SQLite, Redis, Postgres).
// Get returns domain.ErrBlobNotFound when nothing is stored under key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// StateStore persists the PickSet and AnswerSet as two JSON blobs.
// Missing or malformed blobs read back as the caller's fallback.
type StateStore struct {
	blobs   BlobStore
	logger  *slog.Logger
	metrics Metrics
}

func NewStateStore(blobs BlobStore, logger *slog.Logger, metrics Metrics) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &StateStore{blobs: blobs, logger: logger, metrics: metrics}
}

// LoadPicks returns the persisted picks, or a copy of fallback if none are stored.
func (s *StateStore) LoadPicks(ctx context.Context, fallback domain.PickSet) (domain.PickSet, error) {
	var picks domain.PickSet
	found, err := s.load(ctx, PicksKey, &picks)
	if err != nil {
		return nil, err
	}
	if !found || picks == nil {
		return fallback.Clone(), nil
	}
	return picks, nil
}

// LoadAnswers returns the persisted answers, or a copy of fallback if none are stored.
func (s *StateStore) LoadAnswers(ctx context.Context, fallback domain.AnswerSet) (domain.AnswerSet, error) {
	var answers domain.AnswerSet
	found, err := s.load(ctx, AnswersKey, &answers)
	if err != nil {
		return nil, err
	}
	if !found || answers == nil {
		return fallback.Clone(), nil
	}
	return answers, nil
}

// SavePicks replaces the persisted picks with the full given set.
func (s *StateStore) SavePicks(ctx context.Context, picks domain.PickSet) error {
	return s.save(ctx, PicksKey, picks)
}

// SaveAnswers replaces the persisted answers with the full given set.
func (s *StateStore) SaveAnswers(ctx context.Context, answers domain.AnswerSet) error {
	return s.save(ctx, AnswersKey, answers)
}

func (s *StateStore) load(ctx context.Context, key string, v any) (bool, error) {
	start := time.Now()
	data, err := s.blobs.Get(ctx, key)
	s.metrics.StoreObserved("get", time.Since(start))
	if errors.Is(err, domain.ErrBlobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding malformed state blob", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *StateStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	start := time.Now()
	err = s.blobs.Put(ctx, key, data)
	s.metrics.StoreObserved("put", time.Since(start))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
