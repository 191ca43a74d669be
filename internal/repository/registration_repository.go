package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cybrella/cybrella-api/internal/models"
)

const registrationColumns = `id, name, email, phone, address, state, age, grade,
school_name, class_name, college_name, semester, course, past_course,
event_title, upi_ref, status, enlisted_at, payment_screenshot, id_card_url`

// RegistrationRepository persists registrations in the canonical store.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a new registration.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	const query = `INSERT INTO registrations (` + registrationColumns + `)
VALUES (:id, :name, :email, :phone, :address, :state, :age, :grade,
        :school_name, :class_name, :college_name, :semester, :course, :past_course,
        :event_title, :upi_ref, :status, :enlisted_at, :payment_screenshot, :id_card_url)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// FindByID fetches a single registration.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateStatus mutates only the status column.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	const query = `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the registration from the canonical store.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM registrations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns a filtered page of registrations plus the total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.EventTitle != "" {
		args = append(args, filter.EventTitle)
		conditions = append(conditions, fmt.Sprintf("event_title = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", idx, idx))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM registrations" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`SELECT `+registrationColumns+` FROM registrations%s
ORDER BY enlisted_at DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	return regs, total, nil
}

// ListAllOrdered returns every registration ordered by enlistment time
// ascending, the canonical input for a ledger rebuild.
func (r *RegistrationRepository) ListAllOrdered(ctx context.Context) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY enlisted_at ASC`
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query); err != nil {
		return nil, fmt.Errorf("list registrations for rebuild: %w", err)
	}
	return regs, nil
}
