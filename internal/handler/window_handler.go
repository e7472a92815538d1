package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type windowService interface {
	Get(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error)
	Update(ctx context.Context, category models.WindowCategory, window *models.TimeWindow) (*models.TimeWindow, error)
	Reset(ctx context.Context, category models.WindowCategory) error
	ListSecurityWindows(ctx context.Context) ([]models.TimeWindow, error)
	UpdateSecurityWindow(ctx context.Context, window *models.TimeWindow) (*models.TimeWindow, error)
	DeleteSecurityWindow(ctx context.Context, shift string) error
}

// WindowHandler manages scan window configuration endpoints.
type WindowHandler struct {
	service windowService
}

// NewWindowHandler constructs the handler.
func NewWindowHandler(service windowService) *WindowHandler {
	return &WindowHandler{service: service}
}

func pathCategory(c *gin.Context) (models.WindowCategory, error) {
	category := models.WindowCategory(c.Param("category"))
	switch category {
	case models.WindowCategoryStudent, models.WindowCategoryStaff:
		return category, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "category must be student or staff")
	}
}

// Get godoc
// @Summary Configured window for a category
// @Tags Windows
// @Produce json
// @Param category path string true "student or staff"
// @Success 200 {object} response.Envelope
// @Router /windows/{category} [get]
func (h *WindowHandler) Get(c *gin.Context) {
	category, err := pathCategory(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	window, err := h.service.Get(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Update godoc
// @Summary Replace the window for a category
// @Tags Windows
// @Accept json
// @Produce json
// @Param category path string true "student or staff"
// @Param request body dto.WindowRequest true "Window"
// @Success 200 {object} response.Envelope
// @Router /windows/{category} [put]
func (h *WindowHandler) Update(c *gin.Context) {
	category, err := pathCategory(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	window, err := h.service.Update(c.Request.Context(), category, req.Window())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Reset godoc
// @Summary Remove the window for a category
// @Tags Windows
// @Produce json
// @Param category path string true "student or staff"
// @Success 204
// @Router /windows/{category} [delete]
func (h *WindowHandler) Reset(c *gin.Context) {
	category, err := pathCategory(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reset(c.Request.Context(), category); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListShifts godoc
// @Summary All per-shift security windows
// @Tags Windows
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /windows/security/shifts [get]
func (h *WindowHandler) ListShifts(c *gin.Context) {
	windows, err := h.service.ListSecurityWindows(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// UpdateShift godoc
// @Summary Replace one shift's security window
// @Tags Windows
// @Accept json
// @Produce json
// @Param request body dto.WindowRequest true "Window with shift"
// @Success 200 {object} response.Envelope
// @Router /windows/security/shifts [put]
func (h *WindowHandler) UpdateShift(c *gin.Context) {
	var req dto.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	window, err := h.service.UpdateSecurityWindow(c.Request.Context(), req.Window())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// DeleteShift godoc
// @Summary Remove one shift's security window
// @Tags Windows
// @Produce json
// @Param shift path string true "Shift label"
// @Success 204
// @Router /windows/security/shifts/{shift} [delete]
func (h *WindowHandler) DeleteShift(c *gin.Context) {
	if err := h.service.DeleteSecurityWindow(c.Request.Context(), c.Param("shift")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
