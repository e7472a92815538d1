package dto

import "github.com/noah-isme/absensi-qr-api/internal/models"

// StudentRequest creates or updates a student.
type StudentRequest struct {
	NIS           string  `json:"nis" validate:"required"`
	FullName      string  `json:"full_name" validate:"required"`
	ClassID       string  `json:"class_id" validate:"required"`
	GuardianPhone *string `json:"guardian_phone"`
}

// EmployeeRequest creates or updates an employee.
type EmployeeRequest struct {
	EmployeeNo   string              `json:"employee_no" validate:"required"`
	FullName     string              `json:"full_name" validate:"required"`
	Role         models.EmployeeRole `json:"role" validate:"required"`
	DefaultShift *string             `json:"default_shift"`
}

// ClassRequest creates or renames a class.
type ClassRequest struct {
	Name string `json:"name" validate:"required"`
}

// WindowRequest carries the clock fields of a time window.
type WindowRequest struct {
	Shift      string            `json:"shift"`
	EntryOpen  models.TimeOfDay  `json:"entry_open"`
	EntryClose models.TimeOfDay  `json:"entry_close"`
	LateCutoff *models.TimeOfDay `json:"late_cutoff"`
	ExitOpen   models.TimeOfDay  `json:"exit_open"`
	ExitClose  models.TimeOfDay  `json:"exit_close"`
}

// Window converts the request into the model.
func (r WindowRequest) Window() *models.TimeWindow {
	return &models.TimeWindow{
		Shift:      r.Shift,
		EntryOpen:  r.EntryOpen,
		EntryClose: r.EntryClose,
		LateCutoff: r.LateCutoff,
		ExitOpen:   r.ExitOpen,
		ExitClose:  r.ExitClose,
	}
}

// WeeklyHolidaysRequest replaces the recurring weekday set.
type WeeklyHolidaysRequest struct {
	Days []string `json:"days"`
}

// HolidayRequest records a dated holiday.
type HolidayRequest struct {
	Date  string `json:"date" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// SaveRosterRequest replaces one month of the security roster.
type SaveRosterRequest struct {
	Year    int                `json:"year" validate:"required"`
	Month   int                `json:"month" validate:"required"`
	Entries models.MonthRoster `json:"entries" validate:"required"`
}
