package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybrella/cybrella-api/internal/dto"
	"github.com/cybrella/cybrella-api/internal/models"
	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
	"github.com/cybrella/cybrella-api/pkg/response"
)

type sponsorService interface {
	Create(ctx context.Context, req dto.CreateSponsorRequest) (*models.Sponsor, error)
	Update(ctx context.Context, id string, req dto.UpdateSponsorRequest) (*models.Sponsor, error)
	Delete(ctx context.Context, id string) error
	ListTiers(ctx context.Context) ([]models.SponsorTier, error)
	CreateTier(ctx context.Context, req dto.CreateSponsorTierRequest) (*models.SponsorTier, error)
	DeleteTier(ctx context.Context, id string) error
}

// SponsorHandler exposes the public sponsor list and admin sponsor management.
type SponsorHandler struct {
	service sponsorService
	content publicContent
}

// NewSponsorHandler builds a new handler.
func NewSponsorHandler(service sponsorService, content publicContent) *SponsorHandler {
	return &SponsorHandler{service: service, content: content}
}

// List godoc
// @Summary List sponsors
// @Tags Sponsors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sponsors [get]
func (h *SponsorHandler) List(c *gin.Context) {
	sponsors, err := h.content.Sponsors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsors, nil)
}

// Create godoc
// @Summary Create a sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param payload body dto.CreateSponsorRequest true "Sponsor payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sponsors [post]
func (h *SponsorHandler) Create(c *gin.Context) {
	var req dto.CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sponsor payload"))
		return
	}
	sponsor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sponsor)
}

// Update godoc
// @Summary Update a sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param id path string true "Sponsor ID"
// @Param payload body dto.UpdateSponsorRequest true "Sponsor payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sponsors/{id} [put]
func (h *SponsorHandler) Update(c *gin.Context) {
	var req dto.UpdateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sponsor payload"))
		return
	}
	sponsor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// Delete godoc
// @Summary Delete a sponsor
// @Tags Sponsors
// @Produce json
// @Param id path string true "Sponsor ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/sponsors/{id} [delete]
func (h *SponsorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTiers godoc
// @Summary List sponsor tiers
// @Tags Sponsors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sponsor-tiers [get]
func (h *SponsorHandler) ListTiers(c *gin.Context) {
	tiers, err := h.service.ListTiers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tiers, nil)
}

// CreateTier godoc
// @Summary Create a sponsor tier
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param payload body dto.CreateSponsorTierRequest true "Tier payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sponsor-tiers [post]
func (h *SponsorHandler) CreateTier(c *gin.Context) {
	var req dto.CreateSponsorTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tier payload"))
		return
	}
	tier, err := h.service.CreateTier(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tier)
}

// DeleteTier godoc
// @Summary Delete a sponsor tier
// @Tags Sponsors
// @Produce json
// @Param id path string true "Tier ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/sponsor-tiers/{id} [delete]
func (h *SponsorHandler) DeleteTier(c *gin.Context) {
	if err := h.service.DeleteTier(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
