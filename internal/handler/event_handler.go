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

type eventService interface {
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type publicContent interface {
	Events(ctx context.Context) ([]models.Event, error)
	Sponsors(ctx context.Context) ([]models.Sponsor, error)
}

// EventHandler exposes the public catalog and admin event management.
type EventHandler struct {
	service eventService
	content publicContent
}

// NewEventHandler builds a new handler.
func NewEventHandler(service eventService, content publicContent) *EventHandler {
	return &EventHandler{service: service, content: content}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.content.Events(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Get godoc
// @Summary Get event by slug
// @Tags Events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Envelope
// @Router /events/{slug} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCategories godoc
// @Summary List event categories
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *EventHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// CreateCategory godoc
// @Summary Create an event category
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/categories [post]
func (h *EventHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// DeleteCategory godoc
// @Summary Delete an event category
// @Tags Events
// @Produce json
// @Param id path string true "Category ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/categories/{id} [delete]
func (h *EventHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
