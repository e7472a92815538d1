package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type rosterService interface {
	MonthView(ctx context.Context, year, month int) (*service.RosterMonth, error)
	SaveMonth(ctx context.Context, year, month int, entries models.MonthRoster) error
	CopyPreviousMonth(ctx context.Context, year, month int) (int, error)
}

// RosterHandler manages the security shift roster endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

func rosterPeriod(c *gin.Context) (int, int) {
	now := time.Now().UTC()
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))
	return year, month
}

// Month godoc
// @Summary Security roster for one month
// @Tags Roster
// @Produce json
// @Param year query int false "Year. Defaults to current"
// @Param month query int false "Month 1-12. Defaults to current"
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) Month(c *gin.Context) {
	year, month := rosterPeriod(c)
	view, err := h.service.MonthView(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Save godoc
// @Summary Replace one month of the roster
// @Tags Roster
// @Accept json
// @Produce json
// @Param request body dto.SaveRosterRequest true "Roster cells"
// @Success 200 {object} response.Envelope
// @Router /roster [put]
func (h *RosterHandler) Save(c *gin.Context) {
	var req dto.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.SaveMonth(c.Request.Context(), req.Year, req.Month, req.Entries); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "saved"}, nil)
}

// CopyPrevious godoc
// @Summary Fill the month from the previous one
// @Tags Roster
// @Produce json
// @Param year query int false "Year. Defaults to current"
// @Param month query int false "Month 1-12. Defaults to current"
// @Success 200 {object} response.Envelope
// @Router /roster/copy-previous [post]
func (h *RosterHandler) CopyPrevious(c *gin.Context) {
	year, month := rosterPeriod(c)
	copied, err := h.service.CopyPreviousMonth(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"copied": copied}, nil)
}
