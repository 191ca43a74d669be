package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cybrella/cybrella-api/internal/models"
)

// SponsorRepository persists sponsors and sponsor tiers.
type SponsorRepository struct {
	db *sqlx.DB
}

// NewSponsorRepository constructs the repository.
func NewSponsorRepository(db *sqlx.DB) *SponsorRepository {
	return &SponsorRepository{db: db}
}

// List returns all sponsors ordered by tier then name.
func (r *SponsorRepository) List(ctx context.Context) ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	if err := r.db.SelectContext(ctx, &sponsors,
		`SELECT id, name, tier, logo_url, created_at FROM sponsors ORDER BY tier ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return sponsors, nil
}

// Create inserts a sponsor.
func (r *SponsorRepository) Create(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO sponsors (id, name, tier, logo_url, created_at)
VALUES (:id, :name, :tier, :logo_url, :created_at)`, sponsor); err != nil {
		return fmt.Errorf("insert sponsor: %w", err)
	}
	return nil
}

// Update overwrites a sponsor.
func (r *SponsorRepository) Update(ctx context.Context, sponsor *models.Sponsor) error {
	result, err := r.db.NamedExecContext(ctx,
		`UPDATE sponsors SET name = :name, tier = :tier, logo_url = :logo_url WHERE id = :id`,
		sponsor)
	if err != nil {
		return fmt.Errorf("update sponsor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sponsor: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a sponsor.
func (r *SponsorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListTiers returns all sponsor tiers in display order.
func (r *SponsorRepository) ListTiers(ctx context.Context) ([]models.SponsorTier, error) {
	var tiers []models.SponsorTier
	if err := r.db.SelectContext(ctx, &tiers,
		`SELECT id, name, sort_order, created_at FROM sponsor_tiers ORDER BY sort_order ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("list sponsor tiers: %w", err)
	}
	return tiers, nil
}

// CreateTier inserts a tier.
func (r *SponsorRepository) CreateTier(ctx context.Context, tier *models.SponsorTier) error {
	tier.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO sponsor_tiers (id, name, sort_order, created_at)
VALUES (:id, :name, :sort_order, :created_at)`, tier); err != nil {
		return fmt.Errorf("insert sponsor tier: %w", err)
	}
	return nil
}

// DeleteTier removes a tier.
func (r *SponsorRepository) DeleteTier(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sponsor_tiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sponsor tier: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sponsor tier: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
