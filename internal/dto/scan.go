package dto

import (
	"time"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// ScanRequest is the QR kiosk submission.
type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// ScanResponse describes an accepted scan.
type ScanResponse struct {
	PersonCode string                  `json:"person_code"`
	PersonName string                  `json:"person_name"`
	Category   models.PersonCategory   `json:"category"`
	Date       string                  `json:"date"`
	Time       string                  `json:"time"`
	Kind       models.AttendanceKind   `json:"kind"`
	Status     models.AttendanceStatus `json:"status"`
	Message    string                  `json:"message"`
}

// SetDailyStatusRequest is the administration override for one person-day.
type SetDailyStatusRequest struct {
	Population models.Population       `json:"population" validate:"required"`
	PersonCode string                  `json:"person_code" validate:"required"`
	Date       string                  `json:"date" validate:"required"`
	Status     models.AttendanceStatus `json:"status" validate:"required"`
	Note       *string                 `json:"note"`
}

// DayViewResponse lists the per-person day pairs for one date.
type DayViewResponse struct {
	Date       string                 `json:"date"`
	Population models.Population      `json:"population"`
	Holiday    *models.HolidayInfo    `json:"holiday,omitempty"`
	People     []models.AttendanceDay `json:"people"`
}

// DailySummaryResponse is the dashboard payload for one date.
type DailySummaryResponse struct {
	Date        string              `json:"date"`
	Population  models.Population   `json:"population"`
	Holiday     *models.HolidayInfo `json:"holiday,omitempty"`
	Counts      models.StatusCounts `json:"counts"`
	AbsentKnown bool                `json:"absent_known"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// PeriodSummaryResponse aggregates distinct-person counts over a range.
type PeriodSummaryResponse struct {
	From        string              `json:"from"`
	To          string              `json:"to"`
	Population  models.Population   `json:"population"`
	Counts      models.StatusCounts `json:"counts"`
	GeneratedAt time.Time           `json:"generated_at"`
}
