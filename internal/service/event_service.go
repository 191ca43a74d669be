package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type contentInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from an event title.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// EventService manages the event and category catalog behind the public site.
type EventService struct {
	repo      eventRepository
	cache     contentInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, cache contentInvalidator, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the full event catalog ordered for display.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// GetBySlug resolves a single event for the public detail page.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	return event, nil
}

// Create stores a new event and invalidates the public content cache.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        Slugify(req.Title),
		Category:    req.Category,
		Date:        req.Date,
		PosterURL:   req.PosterURL,
		Description: req.Description,
		Rules:       req.Rules,
		Gallery:     req.Gallery,
		Price:       req.Price,
		UpiLink:     req.UpiLink,
		QRCodeURL:   req.QRCodeURL,
		SortOrder:   req.SortOrder,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidate(ctx)
	return &event, nil
}

// Update replaces an event's fields and refreshes its slug from the title.
func (s *EventService) Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event := models.Event{
		ID:          id,
		Title:       req.Title,
		Slug:        Slugify(req.Title),
		Category:    req.Category,
		Date:        req.Date,
		PosterURL:   req.PosterURL,
		Description: req.Description,
		Rules:       req.Rules,
		Gallery:     req.Gallery,
		Price:       req.Price,
		UpiLink:     req.UpiLink,
		QRCodeURL:   req.QRCodeURL,
		SortOrder:   req.SortOrder,
	}

	if err := s.repo.Update(ctx, &event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidate(ctx)
	return &event, nil
}

// Delete removes an event from the catalog. Existing registrations keep the
// event title they were made with.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidate(ctx)
	return nil
}

// ListCategories returns the category labels.
func (s *EventService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// CreateCategory adds a category label.
func (s *EventService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category := models.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	s.invalidate(ctx)
	return &category, nil
}

// DeleteCategory removes a category label.
func (s *EventService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}
	s.invalidate(ctx)
	return nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "content:*"); err != nil {
		s.logger.Warn("failed to invalidate content cache", zap.Error(err))
	}
}
