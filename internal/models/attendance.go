package models

import "time"

// AttendanceStatus enumerates the stored attendance statuses. The wire
// values keep the Indonesian labels the scanners and reports display.
type AttendanceStatus string

const (
	AttendanceStatusOnTime AttendanceStatus = "Hadir"
	AttendanceStatusLate   AttendanceStatus = "Terlambat"
	AttendanceStatusSick   AttendanceStatus = "Sakit"
	AttendanceStatusLeave  AttendanceStatus = "Izin"
	AttendanceStatusAbsent AttendanceStatus = "Alfa"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusOnTime, AttendanceStatusLate, AttendanceStatusSick, AttendanceStatusLeave, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceKind discriminates arrival, departure and synthesized rows.
type AttendanceKind string

const (
	AttendanceKindEntry AttendanceKind = "masuk"
	AttendanceKindExit  AttendanceKind = "pulang"
	AttendanceKindOther AttendanceKind = "lainnya"
)

// Valid returns true when the kind is a supported value.
func (k AttendanceKind) Valid() bool {
	switch k {
	case AttendanceKindEntry, AttendanceKindExit, AttendanceKindOther:
		return true
	default:
		return false
	}
}

// Population selects which attendance table a record belongs to.
type Population string

const (
	PopulationStudents  Population = "students"
	PopulationEmployees Population = "employees"
)

// Valid returns true when the population is known.
func (p Population) Valid() bool {
	return p == PopulationStudents || p == PopulationEmployees
}

// AttendanceRecord is a single check-in/check-out row. PersonCode is the
// student NIS or the employee number depending on the population.
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	PersonCode string           `db:"person_code" json:"person_code"`
	Date       time.Time        `db:"date" json:"date"`
	Time       TimeOfDay        `db:"time" json:"time"`
	Kind       AttendanceKind   `db:"kind" json:"kind"`
	Status     AttendanceStatus `db:"status" json:"status"`
	Note       *string          `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceDay pairs the entry and exit rows recorded for one person on
// one date; a synthesized "other" row occupies the entry slot alone.
type AttendanceDay struct {
	PersonCode string            `json:"person_code"`
	PersonName string            `json:"person_name"`
	ClassName  *string           `json:"class_name,omitempty"`
	Entry      *AttendanceRecord `json:"entry,omitempty"`
	Exit       *AttendanceRecord `json:"exit,omitempty"`
}

// StatusCounts aggregates distinct-person counts per status.
type StatusCounts struct {
	OnTime int `json:"on_time"`
	Late   int `json:"late"`
	Sick   int `json:"sick"`
	Leave  int `json:"leave"`
	Absent int `json:"absent"`
	Total  int `json:"total"`
}

// DayRecord is an attendance row joined with the person's name for the
// administration day view.
type DayRecord struct {
	AttendanceRecord
	PersonName string  `db:"person_name" json:"person_name"`
	ClassName  *string `db:"class_name" json:"class_name,omitempty"`
}

// ExportRow is a flattened report line for CSV/XLSX/PDF rendering.
type ExportRow struct {
	PersonCode string           `db:"person_code"`
	PersonName string           `db:"person_name"`
	Date       time.Time        `db:"date"`
	Time       TimeOfDay        `db:"time"`
	Kind       AttendanceKind   `db:"kind"`
	Status     AttendanceStatus `db:"status"`
	Note       *string          `db:"note"`
}
