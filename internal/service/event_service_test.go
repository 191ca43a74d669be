package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type eventRepoStub struct {
	events     map[string]models.Event
	categories []models.Category
	notFound   bool
}

func (s *eventRepoStub) List(_ context.Context) ([]models.Event, error) {
	out := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out, nil
}

func (s *eventRepoStub) FindBySlug(_ context.Context, slug string) (*models.Event, error) {
	for _, e := range s.events {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *eventRepoStub) Create(_ context.Context, event *models.Event) error {
	if s.events == nil {
		s.events = map[string]models.Event{}
	}
	s.events[event.ID] = *event
	return nil
}

func (s *eventRepoStub) Update(_ context.Context, event *models.Event) error {
	if s.notFound {
		return sql.ErrNoRows
	}
	s.events[event.ID] = *event
	return nil
}

func (s *eventRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.events, id)
	return nil
}

func (s *eventRepoStub) ListCategories(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *eventRepoStub) CreateCategory(_ context.Context, category *models.Category) error {
	s.categories = append(s.categories, *category)
	return nil
}

func (s *eventRepoStub) DeleteCategory(_ context.Context, id string) error {
	for i, c := range s.categories {
		if c.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type invalidatorStub struct {
	patterns []string
}

func (s *invalidatorStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "game-jam", Slugify("Game Jam"))
	assert.Equal(t, "robo-wars-2026", Slugify("Robo Wars 2026!"))
	assert.Equal(t, "ctf", Slugify("  CTF  "))
}

func TestEventCreateDerivesSlugAndInvalidates(t *testing.T) {
	repo := &eventRepoStub{}
	cache := &invalidatorStub{}
	svc := NewEventService(repo, cache, nil, nil)

	event, err := svc.Create(context.Background(), dto.CreateEventRequest{
		Title:    "Game Jam 2026!",
		Category: "Gaming",
	})
	require.NoError(t, err)
	assert.Equal(t, "game-jam-2026", event.Slug)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, []string{"content:*"}, cache.patterns)
}

func TestEventCreateRejectsMissingTitle(t *testing.T) {
	repo := &eventRepoStub{}
	svc := NewEventService(repo, &invalidatorStub{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateEventRequest{Category: "Gaming"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.events)
}

func TestEventUpdateNotFound(t *testing.T) {
	repo := &eventRepoStub{notFound: true, events: map[string]models.Event{}}
	svc := NewEventService(repo, &invalidatorStub{}, nil, nil)

	_, err := svc.Update(context.Background(), "ghost", dto.UpdateEventRequest{
		Title:    "Anything",
		Category: "Misc",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEventGetBySlug(t *testing.T) {
	repo := &eventRepoStub{events: map[string]models.Event{
		"e1": {ID: "e1", Title: "Game Jam", Slug: "game-jam"},
	}}
	svc := NewEventService(repo, &invalidatorStub{}, nil, nil)

	event, err := svc.GetBySlug(context.Background(), "game-jam")
	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)

	_, err = svc.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCategoryLifecycle(t *testing.T) {
	repo := &eventRepoStub{}
	cache := &invalidatorStub{}
	svc := NewEventService(repo, cache, nil, nil)

	category, err := svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Gaming"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(context.Background(), category.ID))
	assert.Empty(t, repo.categories)
	assert.Len(t, cache.patterns, 2)
}
