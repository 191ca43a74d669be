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
	"github.com/cybrella/cybrella-api/internal/sheetsync"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
	"github.com/cybrella/cybrella-api/pkg/export"
)

type registrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	ListAllOrdered(ctx context.Context) ([]models.Registration, error)
}

// LedgerSyncer mirrors registration mutations into the spreadsheet ledger.
type LedgerSyncer interface {
	Append(ctx context.Context, reg models.Registration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, eventTitle string) error
	Delete(ctx context.Context, id, eventTitle string) error
	Rebuild(ctx context.Context, regs []models.Registration) error
}

// RegistrationService owns the registration lifecycle and keeps the
// spreadsheet ledger in step with the canonical store. Every mutation is a
// two-phase sequence: the store commits first, then the ledger follows. A
// ledger failure is surfaced but never rolls the store back; Resync is the
// compensating action.
type RegistrationService struct {
	repo      registrationRepository
	syncer    LedgerSyncer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo registrationRepository, syncer LedgerSyncer, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, syncer: syncer, validator: validate, logger: logger}
}

// Create validates the intake payload, commits the registration to the
// canonical store, then mirrors it into the ledger tabs.
func (s *RegistrationService) Create(ctx context.Context, req dto.CreateRegistrationRequest) (*dto.CreateRegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	reg := models.Registration{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		State:             req.State,
		Age:               req.Age,
		Grade:             req.Grade,
		SchoolName:        req.SchoolName,
		ClassName:         req.ClassName,
		CollegeName:       req.CollegeName,
		Semester:          req.Semester,
		Course:            req.Course,
		PastCourse:        req.PastCourse,
		EventTitle:        req.EventTitle,
		UpiRef:            req.UpiRef,
		Status:            models.StatusPendingVerification,
		EnlistedAt:        models.NewFlexTime(time.Now().UTC()),
		PaymentScreenshot: req.PaymentScreenshot,
		IDCardURL:         req.IDCardURL,
	}

	if err := s.repo.Create(ctx, &reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration")
	}

	if err := s.syncer.Append(ctx, reg); err != nil {
		// The registration is committed; the ledger is behind until the
		// next resync.
		s.logger.Error("ledger append failed after store commit",
			zap.String("registration_id", reg.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrLedgerSync.Code, appErrors.ErrLedgerSync.Status, appErrors.ErrLedgerSync.Message)
	}

	return &dto.CreateRegistrationResult{ID: reg.ID}, nil
}

// List returns a filtered page of registrations for the admin dashboard.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return regs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// UpdateStatus patches the status in the store, then in the ledger.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, req dto.UpdateRegistrationStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "registration id is required")
	}

	status := models.RegistrationStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration")
	}

	if err := s.syncer.UpdateStatus(ctx, id, status, req.EventTitle); err != nil {
		s.logger.Error("ledger status update failed after store commit",
			zap.String("registration_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrLedgerSync.Code, appErrors.ErrLedgerSync.Status, appErrors.ErrLedgerSync.Message)
	}
	return nil
}

// Delete removes the registration from the store first, then from the
// ledger, so a ledger failure strands a stale row rather than a live id.
func (s *RegistrationService) Delete(ctx context.Context, id, eventTitle string) error {
	if id == "" || eventTitle == "" {
		return appErrors.Clone(appErrors.ErrValidation, "registration id and event title are required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}

	if err := s.syncer.Delete(ctx, id, eventTitle); err != nil {
		s.logger.Error("ledger delete failed after store commit",
			zap.String("registration_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrLedgerSync.Code, appErrors.ErrLedgerSync.Status, appErrors.ErrLedgerSync.Message)
	}
	return nil
}

// Resync reads the full snapshot from the store and rebuilds every ledger
// tab from it. This is the repair path for drift left by partial failures.
func (s *RegistrationService) Resync(ctx context.Context) (*dto.ResyncResult, error) {
	regs, err := s.repo.ListAllOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read registrations")
	}
	if len(regs) == 0 {
		return nil, appErrors.ErrNoData
	}

	if err := s.syncer.Rebuild(ctx, regs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLedgerSync.Code, appErrors.ErrLedgerSync.Status, appErrors.ErrLedgerSync.Message)
	}
	return &dto.ResyncResult{Count: len(regs)}, nil
}

// Export renders the full registration list in the requested format using
// the same row shape the ledger carries.
func (s *RegistrationService) Export(ctx context.Context, format string) ([]byte, string, error) {
	regs, err := s.repo.ListAllOrdered(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read registrations")
	}

	data := export.Dataset{Headers: sheetsync.Header(), Rows: make([][]string, 0, len(regs))}
	for i, reg := range regs {
		data.Rows = append(data.Rows, sheetsync.MapRow(reg, i+1))
	}

	switch format {
	case "csv", "":
		payload, err := export.RenderCSV(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.RenderPDF(data, "Registrations")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
