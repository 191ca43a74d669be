package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type sponsorRepository interface {
	List(ctx context.Context) ([]models.Sponsor, error)
	Create(ctx context.Context, sponsor *models.Sponsor) error
	Update(ctx context.Context, sponsor *models.Sponsor) error
	Delete(ctx context.Context, id string) error
	ListTiers(ctx context.Context) ([]models.SponsorTier, error)
	CreateTier(ctx context.Context, tier *models.SponsorTier) error
	DeleteTier(ctx context.Context, id string) error
}

// SponsorService manages sponsors and their tier labels.
type SponsorService struct {
	repo      sponsorRepository
	cache     contentInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSponsorService constructs a SponsorService.
func NewSponsorService(repo sponsorRepository, cache contentInvalidator, validate *validator.Validate, logger *zap.Logger) *SponsorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SponsorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all sponsors.
func (s *SponsorService) List(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sponsors")
	}
	return sponsors, nil
}

// Create stores a sponsor.
func (s *SponsorService) Create(ctx context.Context, req dto.CreateSponsorRequest) (*models.Sponsor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sponsor payload")
	}

	sponsor := models.Sponsor{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Tier:      req.Tier,
		LogoURL:   req.LogoURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &sponsor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sponsor")
	}
	s.invalidate(ctx)
	return &sponsor, nil
}

// Update replaces a sponsor's fields.
func (s *SponsorService) Update(ctx context.Context, id string, req dto.UpdateSponsorRequest) (*models.Sponsor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sponsor payload")
	}

	sponsor := models.Sponsor{
		ID:      id,
		Name:    req.Name,
		Tier:    req.Tier,
		LogoURL: req.LogoURL,
	}
	if err := s.repo.Update(ctx, &sponsor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sponsor")
	}
	s.invalidate(ctx)
	return &sponsor, nil
}

// Delete removes a sponsor.
func (s *SponsorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sponsor")
	}
	s.invalidate(ctx)
	return nil
}

// ListTiers returns the tier labels in display order.
func (s *SponsorService) ListTiers(ctx context.Context) ([]models.SponsorTier, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sponsor tiers")
	}
	return tiers, nil
}

// CreateTier adds a tier label.
func (s *SponsorService) CreateTier(ctx context.Context, req dto.CreateSponsorTierRequest) (*models.SponsorTier, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tier payload")
	}

	tier := models.SponsorTier{
		ID:        uuid.NewString(),
		Name:      req.Name,
		SortOrder: req.SortOrder,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateTier(ctx, &tier); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sponsor tier")
	}
	s.invalidate(ctx)
	return &tier, nil
}

// DeleteTier removes a tier label.
func (s *SponsorService) DeleteTier(ctx context.Context, id string) error {
	if err := s.repo.DeleteTier(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "sponsor tier not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sponsor tier")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SponsorService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "content:*"); err != nil {
		s.logger.Warn("failed to invalidate content cache", zap.Error(err))
	}
}
