package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
)

type registrationServiceMock struct {
	createResult *dto.CreateRegistrationResult
	createErr    error
	resyncResult *dto.ResyncResult
	resyncErr    error
	lastFilter   models.RegistrationFilter
}

func (m *registrationServiceMock) Create(_ context.Context, _ dto.CreateRegistrationRequest) (*dto.CreateRegistrationResult, error) {
	return m.createResult, m.createErr
}

func (m *registrationServiceMock) List(_ context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.Registration{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *registrationServiceMock) UpdateStatus(_ context.Context, _ string, _ dto.UpdateRegistrationStatusRequest) error {
	return nil
}

func (m *registrationServiceMock) Delete(_ context.Context, _, _ string) error {
	return nil
}

func (m *registrationServiceMock) Resync(_ context.Context) (*dto.ResyncResult, error) {
	return m.resyncResult, m.resyncErr
}

func (m *registrationServiceMock) Export(_ context.Context, _ string) ([]byte, string, error) {
	return []byte("data"), "text/csv", nil
}

func TestRegistrationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registrationServiceMock{createResult: &dto.CreateRegistrationResult{ID: "reg-1"}}
	handler := NewRegistrationHandler(mock, nil)

	payload, _ := json.Marshal(dto.CreateRegistrationRequest{
		Name:              "Asha Rao",
		Email:             "asha@example.com",
		Phone:             "+919876543210",
		EventTitle:        "Game Jam",
		UpiRef:            "UPI123",
		PaymentScreenshot: "https://cdn.example.com/proof.png",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "reg-1")
}

func TestRegistrationHandlerCreateBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistrationHandler(&registrationServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader([]byte("{not-json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerCreateLedgerFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registrationServiceMock{createErr: appErrors.ErrLedgerSync}
	handler := NewRegistrationHandler(mock, nil)

	payload, _ := json.Marshal(dto.CreateRegistrationRequest{Name: "X"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "LEDGER_SYNC_FAILED")
}

func TestRegistrationHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registrationServiceMock{}
	handler := NewRegistrationHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/registrations?event=Game+Jam&status=VERIFIED&page=2&page_size=10", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Game Jam", mock.lastFilter.EventTitle)
	require.NotNil(t, mock.lastFilter.Status)
	assert.Equal(t, models.StatusVerified, *mock.lastFilter.Status)
	assert.Equal(t, 2, mock.lastFilter.Page)
	assert.Equal(t, 10, mock.lastFilter.PageSize)
}

func TestRegistrationHandlerResyncNoData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registrationServiceMock{resyncErr: appErrors.ErrNoData}
	handler := NewRegistrationHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/registrations/resync", nil)
	c.Request = req

	handler.Resync(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DATA_FOUND")
}

func TestRegistrationHandlerResync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &registrationServiceMock{resyncResult: &dto.ResyncResult{Count: 7}}
	handler := NewRegistrationHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/registrations/resync", nil)
	c.Request = req

	handler.Resync(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":7`)
}

func TestRegistrationHandlerExportSetsAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistrationHandler(&registrationServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/registrations/export?format=csv", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
