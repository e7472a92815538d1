package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type dashboardService interface {
	DailySummary(ctx context.Context, population models.Population, date time.Time) (*dto.DailySummaryResponse, error)
	PeriodSummary(ctx context.Context, population models.Population, from, to time.Time) (*dto.PeriodSummaryResponse, error)
}

// DashboardHandler wires dashboard summaries to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Daily godoc
// @Summary Distinct-person counts for one date
// @Tags Dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param population query string false "students or employees"
// @Success 200 {object} response.Envelope
// @Router /dashboard/daily [get]
func (h *DashboardHandler) Daily(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	population, err := queryPopulation(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.service.DailySummary(c.Request.Context(), population, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Period godoc
// @Summary Distinct-person counts over a date range
// @Tags Dashboard
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param population query string false "students or employees"
// @Success 200 {object} response.Envelope
// @Router /dashboard/period [get]
func (h *DashboardHandler) Period(c *gin.Context) {
	if c.Query("from") == "" || c.Query("to") == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to are required"))
		return
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	population, err := queryPopulation(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.service.PeriodSummary(c.Request.Context(), population, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
