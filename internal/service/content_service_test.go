package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type contentCacheStub struct {
	values map[string][]byte
	sets   []string
}

func (s *contentCacheStub) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *contentCacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[key] = raw
	s.sets = append(s.sets, key)
	return nil
}

type eventListerStub struct {
	events []models.Event
	calls  int
}

func (s *eventListerStub) List(_ context.Context) ([]models.Event, error) {
	s.calls++
	return s.events, nil
}

type sponsorListerStub struct {
	sponsors []models.Sponsor
	calls    int
}

func (s *sponsorListerStub) List(_ context.Context) ([]models.Sponsor, error) {
	s.calls++
	return s.sponsors, nil
}

type cacheRecorderStub struct {
	hits, misses int
}

func (s *cacheRecorderStub) RecordCacheOperation(hit bool) {
	if hit {
		s.hits++
	} else {
		s.misses++
	}
}

func TestContentEventsReadThrough(t *testing.T) {
	events := &eventListerStub{events: []models.Event{{ID: "e1", Title: "Game Jam"}}}
	cache := &contentCacheStub{}
	recorder := &cacheRecorderStub{}
	svc := NewContentService(events, &sponsorListerStub{}, cache, recorder, time.Minute, nil)
	ctx := context.Background()

	first, err := svc.Events(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, []string{"content:events"}, cache.sets)

	second, err := svc.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, events.calls, "second read must be served from cache")
	assert.Equal(t, 1, recorder.hits)
	assert.Equal(t, 1, recorder.misses)
}

func TestContentSponsorsReadThrough(t *testing.T) {
	sponsors := &sponsorListerStub{sponsors: []models.Sponsor{{ID: "s1", Name: "Acme", Tier: "GOLD"}}}
	cache := &contentCacheStub{}
	svc := NewContentService(&eventListerStub{}, sponsors, cache, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.Sponsors(ctx)
	require.NoError(t, err)
	_, err = svc.Sponsors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sponsors.calls)
}

func TestContentWithoutCacheFallsThrough(t *testing.T) {
	events := &eventListerStub{events: []models.Event{{ID: "e1"}}}
	svc := NewContentService(events, &sponsorListerStub{}, nil, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := svc.Events(ctx)
	require.NoError(t, err)
	_, err = svc.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, events.calls)
}
