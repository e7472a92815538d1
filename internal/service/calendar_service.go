package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type calendarRepository interface {
	WeeklyHolidays(ctx context.Context) (string, error)
	SaveWeeklyHolidays(ctx context.Context, value string) error
	HolidayByDate(ctx context.Context, date time.Time) (*models.Holiday, error)
	ListHolidays(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
	CreateHoliday(ctx context.Context, holiday *models.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

// CalendarService answers whether a date is a non-attendance day and
// manages the holiday configuration behind that answer.
type CalendarService struct {
	repo   calendarRepository
	logger *zap.Logger
}

// NewCalendarService constructs a CalendarService instance.
func NewCalendarService(repo calendarRepository, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, logger: logger}
}

// IsHoliday resolves whether the date is suppressed. The weekly recurring
// set wins over dated entries so the reported reason is stable when both
// apply; nil means a regular school day.
func (s *CalendarService) IsHoliday(ctx context.Context, date time.Time) (*models.HolidayInfo, error) {
	raw, err := s.repo.WeeklyHolidays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly holidays")
	}
	dayName := models.WeekdayName(date)
	for _, entry := range strings.Split(raw, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), dayName) {
			return &models.HolidayInfo{Source: models.HolidaySourceWeekly, Reason: dayName}, nil
		}
	}

	holiday, err := s.repo.HolidayByDate(ctx, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up holiday")
	}
	return &models.HolidayInfo{Source: models.HolidaySourceDated, Reason: holiday.Label}, nil
}

// WeeklyHolidaySet returns the configured recurring weekday names.
func (s *CalendarService) WeeklyHolidaySet(ctx context.Context) ([]string, error) {
	raw, err := s.repo.WeeklyHolidays(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly holidays")
	}
	var days []string
	for _, entry := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			days = append(days, trimmed)
		}
	}
	return days, nil
}

// SetWeeklyHolidays replaces the recurring weekday set. Every entry must
// be a known localized weekday name.
func (s *CalendarService) SetWeeklyHolidays(ctx context.Context, days []string) error {
	known := make(map[string]string, len(models.WeekdayNames))
	for _, name := range models.WeekdayNames {
		known[strings.ToLower(name)] = name
	}

	seen := make(map[string]bool, len(days))
	var normalized []string
	for _, day := range days {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(day))]
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday name: %s", day))
		}
		if !seen[canonical] {
			seen[canonical] = true
			normalized = append(normalized, canonical)
		}
	}

	if err := s.repo.SaveWeeklyHolidays(ctx, strings.Join(normalized, ",")); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weekly holidays")
	}
	return nil
}

// ListHolidays returns dated holidays inside the range.
func (s *CalendarService) ListHolidays(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	holidays, err := s.repo.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, nil
}

// AddHoliday records a one-off dated holiday.
func (s *CalendarService) AddHoliday(ctx context.Context, date time.Time, label string) (*models.Holiday, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "holiday label is required")
	}
	holiday := &models.Holiday{Date: date, Label: label}
	if err := s.repo.CreateHoliday(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}
	return holiday, nil
}

// RemoveHoliday deletes a dated holiday.
func (s *CalendarService) RemoveHoliday(ctx context.Context, id string) error {
	if err := s.repo.DeleteHoliday(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete holiday")
	}
	return nil
}
