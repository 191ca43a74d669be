package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

const (
	cacheKeyEvents   = "content:events"
	cacheKeySponsors = "content:sponsors"
)

type contentCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheRecorder interface {
	RecordCacheOperation(hit bool)
}

type eventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

type sponsorLister interface {
	List(ctx context.Context) ([]models.Sponsor, error)
}

// ContentService serves the public landing page payloads through a
// read-through cache. Admin mutations invalidate by pattern, so a stale
// entry lives at most one TTL.
type ContentService struct {
	events   eventLister
	sponsors sponsorLister
	cache    contentCache
	metrics  cacheRecorder
	ttl      time.Duration
	logger   *zap.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(events eventLister, sponsors sponsorLister, cache contentCache, metrics cacheRecorder, ttl time.Duration, logger *zap.Logger) *ContentService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{events: events, sponsors: sponsors, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Events returns the cached event catalog, falling back to the store.
func (s *ContentService) Events(ctx context.Context) ([]models.Event, error) {
	var cached []models.Event
	if s.lookup(ctx, cacheKeyEvents, &cached) {
		return cached, nil
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	s.store(ctx, cacheKeyEvents, events)
	return events, nil
}

// Sponsors returns the cached sponsor list, falling back to the store.
func (s *ContentService) Sponsors(ctx context.Context) ([]models.Sponsor, error) {
	var cached []models.Sponsor
	if s.lookup(ctx, cacheKeySponsors, &cached) {
		return cached, nil
	}

	sponsors, err := s.sponsors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sponsors")
	}
	s.store(ctx, cacheKeySponsors, sponsors)
	return sponsors, nil
}

func (s *ContentService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *ContentService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
