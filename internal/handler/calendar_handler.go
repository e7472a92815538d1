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

type calendarService interface {
	IsHoliday(ctx context.Context, date time.Time) (*models.HolidayInfo, error)
	WeeklyHolidaySet(ctx context.Context) ([]string, error)
	SetWeeklyHolidays(ctx context.Context, days []string) error
	ListHolidays(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
	AddHoliday(ctx context.Context, date time.Time, label string) (*models.Holiday, error)
	RemoveHoliday(ctx context.Context, id string) error
}

// CalendarHandler manages holiday configuration endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Check godoc
// @Summary Whether a date is a holiday
// @Tags Calendar
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /calendar/check [get]
func (h *CalendarHandler) Check(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	info, err := h.service.IsHoliday(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "holiday": info}, nil)
}

// WeeklyHolidays godoc
// @Summary Recurring weekly holiday set
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/weekly-holidays [get]
func (h *CalendarHandler) WeeklyHolidays(c *gin.Context) {
	days, err := h.service.WeeklyHolidaySet(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"days": days}, nil)
}

// SetWeeklyHolidays godoc
// @Summary Replace the recurring weekly holiday set
// @Tags Calendar
// @Accept json
// @Produce json
// @Param request body dto.WeeklyHolidaysRequest true "Weekday names"
// @Success 200 {object} response.Envelope
// @Router /calendar/weekly-holidays [put]
func (h *CalendarHandler) SetWeeklyHolidays(c *gin.Context) {
	var req dto.WeeklyHolidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.SetWeeklyHolidays(c.Request.Context(), req.Days); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"days": req.Days}, nil)
}

// ListHolidays godoc
// @Summary Dated holidays inside a range
// @Tags Calendar
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/holidays [get]
func (h *CalendarHandler) ListHolidays(c *gin.Context) {
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
	holidays, err := h.service.ListHolidays(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}

// AddHoliday godoc
// @Summary Record a dated holiday
// @Tags Calendar
// @Accept json
// @Produce json
// @Param request body dto.HolidayRequest true "Holiday"
// @Success 201 {object} response.Envelope
// @Router /calendar/holidays [post]
func (h *CalendarHandler) AddHoliday(c *gin.Context) {
	var req dto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	holiday, err := h.service.AddHoliday(c.Request.Context(), date, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// RemoveHoliday godoc
// @Summary Delete a dated holiday
// @Tags Calendar
// @Produce json
// @Param id path string true "Holiday ID"
// @Success 204
// @Router /calendar/holidays/{id} [delete]
func (h *CalendarHandler) RemoveHoliday(c *gin.Context) {
	if err := h.service.RemoveHoliday(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
