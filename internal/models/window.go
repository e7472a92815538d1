package models

import "fmt"

// WindowCategory identifies which population a time window governs.
type WindowCategory string

const (
	WindowCategoryStudent  WindowCategory = "student"
	WindowCategoryStaff    WindowCategory = "staff"
	WindowCategorySecurity WindowCategory = "security"
)

// TimeWindow holds the configured scan windows for one category. Security
// windows additionally carry the shift they belong to; student and staff
// windows are singleton rows with an empty Shift.
type TimeWindow struct {
	ID         string         `db:"id" json:"id"`
	Category   WindowCategory `db:"-" json:"category"`
	Shift      string         `db:"shift_name" json:"shift,omitempty"`
	EntryOpen  TimeOfDay      `db:"entry_open" json:"entry_open"`
	EntryClose TimeOfDay      `db:"entry_close" json:"entry_close"`
	LateCutoff *TimeOfDay     `db:"late_cutoff" json:"late_cutoff,omitempty"`
	ExitOpen   TimeOfDay      `db:"exit_open" json:"exit_open"`
	ExitClose  TimeOfDay      `db:"exit_close" json:"exit_close"`
}

// Validate enforces the window ordering invariants at write time:
// entry_open <= entry_close <= late_cutoff and exit_open <= exit_close.
func (w *TimeWindow) Validate() error {
	if w.EntryOpen > w.EntryClose {
		return fmt.Errorf("entry window opens after it closes")
	}
	if w.LateCutoff != nil && w.EntryClose > *w.LateCutoff {
		return fmt.Errorf("late cutoff precedes entry close")
	}
	if w.ExitOpen > w.ExitClose {
		return fmt.Errorf("exit window opens after it closes")
	}
	return nil
}

// Classify maps a clock time onto the window. Branch order is the
// tie-break: entry, then late entry, then exit. The boolean is false when
// the time matches no branch.
func (w *TimeWindow) Classify(t TimeOfDay) (AttendanceKind, AttendanceStatus, bool) {
	switch {
	case w.EntryOpen <= t && t <= w.EntryClose:
		return AttendanceKindEntry, AttendanceStatusOnTime, true
	case w.LateCutoff != nil && w.EntryClose < t && t <= *w.LateCutoff:
		return AttendanceKindEntry, AttendanceStatusLate, true
	case w.ExitOpen <= t && t <= w.ExitClose:
		return AttendanceKindExit, AttendanceStatusOnTime, true
	default:
		return "", "", false
	}
}
