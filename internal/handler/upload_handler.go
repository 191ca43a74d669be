package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/cybrella/cybrella-api/pkg/errors"
	"github.com/cybrella/cybrella-api/pkg/response"
)

type uploadService interface {
	Upload(ctx context.Context, folder string, header *multipart.FileHeader) (string, error)
	List(ctx context.Context, folder string) ([]string, error)
}

// UploadHandler exposes the asset upload and listing endpoints.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler builds a new handler.
func NewUploadHandler(service uploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload godoc
// @Summary Upload an asset file
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "File to upload"
// @Param folder formData string false "Target folder"
// @Success 201 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no file in request"))
		return
	}
	folder := c.PostForm("folder")
	if folder == "" {
		folder = c.Query("folder")
	}

	url, err := h.service.Upload(c.Request.Context(), folder, header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"url": url})
}

// List godoc
// @Summary List uploaded files in a folder
// @Tags Uploads
// @Produce json
// @Param folder query string false "Folder name"
// @Success 200 {object} response.Envelope
// @Router /files [get]
func (h *UploadHandler) List(c *gin.Context) {
	urls, err := h.service.List(c.Request.Context(), c.Query("folder"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"files": urls}, nil)
}
