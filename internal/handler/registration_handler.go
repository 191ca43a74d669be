package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
	"github.com/cybrella/cybrella-api/pkg/response"
)

type registrationService interface {
	Create(ctx context.Context, req dto.CreateRegistrationRequest) (*dto.CreateRegistrationResult, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateRegistrationStatusRequest) error
	Delete(ctx context.Context, id, eventTitle string) error
	Resync(ctx context.Context) (*dto.ResyncResult, error)
	Export(ctx context.Context, format string) ([]byte, string, error)
}

// RegistrationHandler exposes the public intake endpoint and the admin
// registration management endpoints.
type RegistrationHandler struct {
	service registrationService
	logger  *zap.Logger
}

// NewRegistrationHandler builds a new handler.
func NewRegistrationHandler(service registrationService, logger *zap.Logger) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationHandler{service: service, logger: logger}
}

// Create godoc
// @Summary Submit a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.CreateRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req dto.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param event query string false "Event title filter"
// @Param status query string false "Status filter"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	filter := models.RegistrationFilter{
		EventTitle: c.Query("event"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.RegistrationStatus(raw)
		filter.Status = &status
	}

	regs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, pagination)
}

// UpdateStatus godoc
// @Summary Update registration status
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.UpdateRegistrationStatusRequest true "Status payload"
// @Success 204
// @Security BearerAuth
// @Router /admin/registrations/{id}/status [patch]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Param event query string true "Event title"
// @Success 204
// @Security BearerAuth
// @Router /admin/registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Query("event")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Resync godoc
// @Summary Rebuild the spreadsheet ledger from the document store
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/registrations/resync [post]
func (h *RegistrationHandler) Resync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims != nil {
		h.logger.Info("ledger resync requested", zap.String("admin_email", claims.Email))
	}
	result, err := h.service.Resync(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export registrations as CSV or PDF
// @Tags Registrations
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Security BearerAuth
// @Router /admin/registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("registrations-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
