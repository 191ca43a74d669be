package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type registrationRepoStub struct {
	created   []models.Registration
	statuses  map[string]models.RegistrationStatus
	deleted   []string
	all       []models.Registration
	createErr error
	listErr   error
	notFound  bool
	calls     []string
}

func (s *registrationRepoStub) Create(_ context.Context, reg *models.Registration) error {
	s.calls = append(s.calls, "store.create")
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *reg)
	return nil
}

func (s *registrationRepoStub) UpdateStatus(_ context.Context, id string, status models.RegistrationStatus) error {
	s.calls = append(s.calls, "store.update_status")
	if s.notFound {
		return sql.ErrNoRows
	}
	if s.statuses == nil {
		s.statuses = map[string]models.RegistrationStatus{}
	}
	s.statuses[id] = status
	return nil
}

func (s *registrationRepoStub) Delete(_ context.Context, id string) error {
	s.calls = append(s.calls, "store.delete")
	if s.notFound {
		return sql.ErrNoRows
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *registrationRepoStub) List(_ context.Context, _ models.RegistrationFilter) ([]models.Registration, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.all, len(s.all), nil
}

func (s *registrationRepoStub) ListAllOrdered(_ context.Context) ([]models.Registration, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.all, nil
}

type syncerStub struct {
	appendErr  error
	rebuildErr error
	appended   []models.Registration
	rebuilt    [][]models.Registration
	calls      *[]string
}

func (s *syncerStub) record(call string) {
	if s.calls != nil {
		*s.calls = append(*s.calls, call)
	}
}

func (s *syncerStub) Append(_ context.Context, reg models.Registration) error {
	s.record("ledger.append")
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, reg)
	return nil
}

func (s *syncerStub) UpdateStatus(_ context.Context, _ string, _ models.RegistrationStatus, _ string) error {
	s.record("ledger.update_status")
	return nil
}

func (s *syncerStub) Delete(_ context.Context, _, _ string) error {
	s.record("ledger.delete")
	return nil
}

func (s *syncerStub) Rebuild(_ context.Context, regs []models.Registration) error {
	s.record("ledger.rebuild")
	if s.rebuildErr != nil {
		return s.rebuildErr
	}
	s.rebuilt = append(s.rebuilt, regs)
	return nil
}

func validCreateRequest() dto.CreateRegistrationRequest {
	return dto.CreateRegistrationRequest{
		Name:              "Asha Rao",
		Email:             "asha@example.com",
		Phone:             "+919876543210",
		EventTitle:        "Game Jam",
		UpiRef:            "UPI123",
		PaymentScreenshot: "https://cdn.example.com/proof.png",
	}
}

func TestCreateWritesStoreBeforeLedger(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.ID)

	require.Equal(t, []string{"store.create", "ledger.append"}, repo.calls)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.StatusPendingVerification, repo.created[0].Status)
	assert.False(t, repo.created[0].EnlistedAt.IsZero())
	require.Len(t, syncer.appended, 1)
	assert.Equal(t, result.ID, syncer.appended[0].ID)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	req := validCreateRequest()
	req.EventTitle = "UNKNOWN_EVENT"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created, "store must not be touched")
	assert.Empty(t, syncer.appended)
}

func TestCreateLedgerFailureKeepsStoreWrite(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{appendErr: errors.New("sheets down"), calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLedgerSync.Code, appErrors.FromError(err).Code)

	// The registration stays committed; the next rebuild repairs the ledger.
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []string{"store.create", "ledger.append"}, repo.calls)
}

func TestCreateStoreFailureSkipsLedger(t *testing.T) {
	repo := &registrationRepoStub{createErr: errors.New("db down")}
	syncer := &syncerStub{calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, []string{"store.create"}, repo.calls)
}

func TestUpdateStatusOrdering(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	err := svc.UpdateStatus(context.Background(), "r1", dto.UpdateRegistrationStatusRequest{
		Status:     "VERIFIED",
		EventTitle: "Game Jam",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"store.update_status", "ledger.update_status"}, repo.calls)
	assert.Equal(t, models.StatusVerified, repo.statuses["r1"])
}

func TestUpdateStatusNotFound(t *testing.T) {
	repo := &registrationRepoStub{notFound: true}
	syncer := &syncerStub{calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	err := svc.UpdateStatus(context.Background(), "ghost", dto.UpdateRegistrationStatusRequest{
		Status:     "REJECTED",
		EventTitle: "Game Jam",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"store.update_status"}, repo.calls, "ledger must not be touched")
}

func TestDeleteOrdering(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{calls: &repo.calls}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "r1", "Game Jam"))
	assert.Equal(t, []string{"store.delete", "ledger.delete"}, repo.calls)
	assert.Equal(t, []string{"r1"}, repo.deleted)
}

func TestResyncEmptyStore(t *testing.T) {
	repo := &registrationRepoStub{}
	syncer := &syncerStub{}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	_, err := svc.Resync(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoData.Code, appErrors.FromError(err).Code)
	assert.Empty(t, syncer.rebuilt)
}

func TestResyncRebuildsFromSnapshot(t *testing.T) {
	repo := &registrationRepoStub{all: []models.Registration{
		{ID: "r1", EventTitle: "Game Jam"},
		{ID: "r2", EventTitle: "Robo Wars"},
	}}
	syncer := &syncerStub{}
	svc := NewRegistrationService(repo, syncer, nil, nil)

	result, err := svc.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, syncer.rebuilt, 1)
	assert.Len(t, syncer.rebuilt[0], 2)
}

func TestExportCSV(t *testing.T) {
	repo := &registrationRepoStub{all: []models.Registration{
		{ID: "r1", Name: "One", EventTitle: "Game Jam", Status: models.StatusVerified},
	}}
	svc := NewRegistrationService(repo, &syncerStub{}, nil, nil)

	payload, contentType, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "SERIAL NO")
	assert.Contains(t, string(payload), "r1")
}

func TestExportUnknownFormat(t *testing.T) {
	repo := &registrationRepoStub{}
	svc := NewRegistrationService(repo, &syncerStub{}, nil, nil)

	_, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
