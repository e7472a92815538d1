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

type attendanceService interface {
	SetDailyStatus(ctx context.Context, population models.Population, code string, date time.Time, status models.AttendanceStatus, note *string) error
	DayView(ctx context.Context, population models.Population, date time.Time) (*dto.DayViewResponse, error)
}

// AttendanceHandler exposes the administration day view and override.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// DayView godoc
// @Summary Attendance records for one date
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param population query string false "students or employees"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) DayView(c *gin.Context) {
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

	view, err := h.service.DayView(c.Request.Context(), population, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SetDailyStatus godoc
// @Summary Override one person's day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body dto.SetDailyStatusRequest true "Override"
// @Success 200 {object} response.Envelope
// @Router /attendance/daily-status [put]
func (h *AttendanceHandler) SetDailyStatus(c *gin.Context) {
	var req dto.SetDailyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.SetDailyStatus(c.Request.Context(), req.Population, req.PersonCode, date, req.Status, req.Note); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "updated"}, nil)
}
