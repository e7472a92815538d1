package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type rosterRepository interface {
	ListRange(ctx context.Context, from, to time.Time) ([]models.ShiftAssignment, error)
	ReplaceRange(ctx context.Context, from, to time.Time, employeeIDs []string, assignments []models.ShiftAssignment) error
	InsertMissing(ctx context.Context, assignments []models.ShiftAssignment) (int, error)
}

type rosterEmployeeRepository interface {
	ListSecurity(ctx context.Context) ([]models.Employee, error)
}

// RosterMonth is the editor view of one month: the security staff and
// their per-day shift labels.
type RosterMonth struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	Days      int                `json:"days"`
	Employees []models.Employee  `json:"employees"`
	Roster    models.MonthRoster `json:"roster"`
}

// RosterService manages the security shift roster.
type RosterService struct {
	roster    rosterRepository
	employees rosterEmployeeRepository
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(roster rosterRepository, employees rosterEmployeeRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{roster: roster, employees: employees, logger: logger}
}

func monthRange(year, month int) (time.Time, time.Time, int) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, last.Day()
}

// MonthView returns the roster grid for a month alongside the security
// staff it covers.
func (s *RosterService) MonthView(ctx context.Context, year, month int) (*RosterMonth, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	first, last, days := monthRange(year, month)

	employees, err := s.employees.ListSecurity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list security staff")
	}
	assignments, err := s.roster.ListRange(ctx, first, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}

	roster := make(models.MonthRoster, len(employees))
	for _, e := range employees {
		roster[e.ID] = make(map[int]string)
	}
	for _, a := range assignments {
		if _, ok := roster[a.EmployeeID]; !ok {
			roster[a.EmployeeID] = make(map[int]string)
		}
		roster[a.EmployeeID][a.Date.Day()] = a.Shift
	}

	return &RosterMonth{Year: year, Month: month, Days: days, Employees: employees, Roster: roster}, nil
}

// SaveMonth replaces the month's roster for the submitted employees with
// the submitted cells. Empty cells mean "no assignment" and simply end up
// deleted.
func (s *RosterService) SaveMonth(ctx context.Context, year, month int, entries models.MonthRoster) error {
	if month < 1 || month > 12 {
		return appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	first, last, days := monthRange(year, month)

	employeeIDs := make([]string, 0, len(entries))
	var assignments []models.ShiftAssignment
	for employeeID, cells := range entries {
		employeeIDs = append(employeeIDs, employeeID)
		for day, shift := range cells {
			if day < 1 || day > days {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d outside month", day))
			}
			shift = strings.TrimSpace(shift)
			if shift == "" {
				continue
			}
			if !knownShift(shift) && !strings.EqualFold(shift, models.ShiftOff) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift: %s", shift))
			}
			assignments = append(assignments, models.ShiftAssignment{
				EmployeeID: employeeID,
				Date:       first.AddDate(0, 0, day-1),
				Shift:      shift,
			})
		}
	}

	if err := s.roster.ReplaceRange(ctx, first, last, employeeIDs, assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster")
	}
	return nil
}

// CopyPreviousMonth fills the target month from the one before it by day
// of month. Existing cells are kept, "Off" markers and source days past
// the target month's end are skipped, and the whole copy is one
// transaction; running it twice adds nothing new. Returns how many cells
// were copied.
func (s *RosterService) CopyPreviousMonth(ctx context.Context, year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	targetFirst, _, targetDays := monthRange(year, month)
	prev := targetFirst.AddDate(0, -1, 0)
	prevFirst, prevLast, _ := monthRange(prev.Year(), int(prev.Month()))

	source, err := s.roster.ListRange(ctx, prevFirst, prevLast)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read previous roster")
	}

	var assignments []models.ShiftAssignment
	for _, a := range source {
		if !models.ShiftScheduled(a.Shift) {
			continue
		}
		day := a.Date.Day()
		if day > targetDays {
			continue
		}
		assignments = append(assignments, models.ShiftAssignment{
			EmployeeID: a.EmployeeID,
			Date:       targetFirst.AddDate(0, 0, day-1),
			Shift:      a.Shift,
		})
	}

	copied, err := s.roster.InsertMissing(ctx, assignments)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy roster")
	}
	s.logger.Info("roster copied from previous month",
		zap.Int("year", year), zap.Int("month", month), zap.Int("copied", copied))
	return copied, nil
}
