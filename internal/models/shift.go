package models

import (
	"strings"
	"time"
)

// ShiftOff is the roster value meaning "scheduled off"; it is treated the
// same as an absent roster row.
const ShiftOff = "Off"

// KnownShifts lists the shift labels a security window may be configured for.
var KnownShifts = []string{"shift1", "shift2", "shift3", "shift4"}

// ShiftScheduled reports whether a roster value represents a working shift.
func ShiftScheduled(shift string) bool {
	trimmed := strings.TrimSpace(shift)
	return trimmed != "" && !strings.EqualFold(trimmed, ShiftOff)
}

// ShiftAssignment is one roster cell: which shift an employee works on a
// date. Unique per (employee, date).
type ShiftAssignment struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Date       time.Time `db:"date" json:"date"`
	Shift      string    `db:"shift" json:"shift"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MonthRoster maps employee id -> day of month -> shift label.
type MonthRoster map[string]map[int]string
