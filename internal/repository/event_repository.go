package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cybrella/cybrella-api/internal/models"
)

const eventColumns = `id, title, slug, category, date, poster_url, description,
rules, gallery, price, upi_link, qr_code_url, sort_order, created_at`

// EventRepository persists events and their categories.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns all events in display order.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY sort_order ASC, created_at ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindBySlug fetches one event by its URL slug.
func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, slug); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (` + eventColumns + `)
VALUES (:id, :title, :slug, :category, :date, :poster_url, :description,
        :rules, :gallery, :price, :upi_link, :qr_code_url, :sort_order, :created_at)`
	event.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update overwrites a stored event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = :title, slug = :slug, category = :category,
date = :date, poster_url = :poster_url, description = :description, rules = :rules,
gallery = :gallery, price = :price, upi_link = :upi_link, qr_code_url = :qr_code_url,
sort_order = :sort_order WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *EventRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories,
		`SELECT id, name, created_at FROM categories ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a category.
func (r *EventRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	category.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (:id, :name, :created_at)`,
		category); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category.
func (r *EventRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
