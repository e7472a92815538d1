package models

import "time"

// HolidaySource discriminates why a date is a non-attendance day.
type HolidaySource string

const (
	HolidaySourceWeekly HolidaySource = "weekly"
	HolidaySourceDated  HolidaySource = "dated"
)

// HolidayInfo is the resolver's positive answer: the date is suppressed and
// this is why. A nil *HolidayInfo means a regular school day, which is a
// different fact than "nobody scanned yet".
type HolidayInfo struct {
	Source HolidaySource `json:"source"`
	Reason string        `json:"reason"`
}

// Holiday is a one-off dated holiday row, unique per date.
type Holiday struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WeekdayNames maps Go weekdays to the localized names stored in the
// weekly-holiday configuration value.
var WeekdayNames = map[time.Weekday]string{
	time.Sunday:    "Minggu",
	time.Monday:    "Senin",
	time.Tuesday:   "Selasa",
	time.Wednesday: "Rabu",
	time.Thursday:  "Kamis",
	time.Friday:    "Jumat",
	time.Saturday:  "Sabtu",
}

// WeekdayName returns the localized weekday name for a date.
func WeekdayName(date time.Time) string {
	return WeekdayNames[date.Weekday()]
}

// Configuration is a generic key/value settings row; the weekly holiday
// set lives under the "weekly_holidays" key as a comma list of weekday
// names.
type Configuration struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ConfigKeyWeeklyHolidays is the configurations key for the recurring set.
const ConfigKeyWeeklyHolidays = "weekly_holidays"
