// Package vocab serves the controlled vocabulary value sets with a
// Redis-backed cache in front of the database. Vocabularies change rarely and
// gate every write, so reads come from cache with a bounded TTL and a
// background refresher keeps the entry warm. Without Redis the store reads
// through to the database on every call.
package vocab

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/telemetry"
)

// CacheKey is the Redis key holding the JSON-encoded domain set.
const CacheKey = "cigardb:vocab:domains"

// DomainReader is the repository surface the store needs.
type DomainReader interface {
	GetAllDomains(ctx context.Context) (models.DomainSet, error)
}

// Store serves vocabulary value sets, caching them in Redis when a client is
// configured. A nil redis client disables caching entirely.
type Store struct {
	repo   DomainReader
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a vocabulary store. rdb may be nil.
func NewStore(repo DomainReader, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{repo: repo, rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the current domain set, preferring the cache. Cache failures
// are logged and fall through to the database; a stale-but-readable cache
// never masks the authoritative store.
func (s *Store) Get(ctx context.Context) (models.DomainSet, error) {
	if s.rdb == nil {
		telemetry.VocabularyCacheHits.WithLabelValues("bypass").Inc()
		return s.repo.GetAllDomains(ctx)
	}

	raw, err := s.rdb.Get(ctx, CacheKey).Bytes()
	if err == nil {
		var set models.DomainSet
		if err := json.Unmarshal(raw, &set); err == nil {
			telemetry.VocabularyCacheHits.WithLabelValues("hit").Inc()
			return set, nil
		}
		s.logger.Warn("vocabulary cache entry corrupt, rereading from database", "error", err)
	} else if err != redis.Nil {
		s.logger.Warn("vocabulary cache read failed", "error", err)
	}

	telemetry.VocabularyCacheHits.WithLabelValues("miss").Inc()
	set, err := s.repo.GetAllDomains(ctx)
	if err != nil {
		return nil, err
	}

	s.fill(ctx, set)
	return set, nil
}

// Refresh rereads the domain set from the database and rewrites the cache
// entry. Called by the background refresher and after vocabulary updates.
func (s *Store) Refresh(ctx context.Context) error {
	set, err := s.repo.GetAllDomains(ctx)
	if err != nil {
		return err
	}
	s.fill(ctx, set)
	return nil
}

// Invalidate drops the cache entry so the next Get rereads the database
func (s *Store) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, CacheKey).Err(); err != nil {
		s.logger.Warn("vocabulary cache invalidation failed", "error", err)
	}
}

func (s *Store) fill(ctx context.Context, set models.DomainSet) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(set)
	if err != nil {
		s.logger.Warn("vocabulary cache encode failed", "error", err)
		return
	}
	if err := s.rdb.Set(ctx, CacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("vocabulary cache write failed", "error", err)
	}
}
