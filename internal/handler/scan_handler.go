package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type scanService interface {
	ProcessScan(ctx context.Context, payload string) (*dto.ScanResponse, error)
}

// ScanHandler receives QR kiosk submissions.
type ScanHandler struct {
	service scanService
}

// NewScanHandler constructs the handler.
func NewScanHandler(service scanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Scan godoc
// @Summary Evaluate a QR attendance scan
// @Tags Scan
// @Accept json
// @Produce json
// @Param request body dto.ScanRequest true "QR payload"
// @Success 200 {object} response.Envelope
// @Router /scan [post]
func (h *ScanHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	result, err := h.service.ProcessScan(c.Request.Context(), req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
