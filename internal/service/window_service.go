package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type windowRepository interface {
	Singleton(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error)
	UpsertSingleton(ctx context.Context, category models.WindowCategory, window *models.TimeWindow) error
	ResetSingleton(ctx context.Context, category models.WindowCategory) error
	SecurityShift(ctx context.Context, shift string) (*models.TimeWindow, error)
	ListSecurityShifts(ctx context.Context) ([]models.TimeWindow, error)
	UpsertSecurityShift(ctx context.Context, window *models.TimeWindow) error
	DeleteSecurityShift(ctx context.Context, shift string) error
}

type windowRosterRepository interface {
	ShiftOn(ctx context.Context, employeeID string, date time.Time) (string, error)
}

// WindowService resolves the effective scan window for a person and
// manages the window configuration.
type WindowService struct {
	windows   windowRepository
	roster    windowRosterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWindowService constructs a WindowService instance.
func NewWindowService(windows windowRepository, roster windowRosterRepository, validate *validator.Validate, logger *zap.Logger) *WindowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WindowService{windows: windows, roster: roster, validator: validate, logger: logger}
}

// Resolve returns the window governing the person's scan on the date.
// Students and non-security employees use their singleton window; security
// staff go through the roster, so an unscheduled or Off day refuses the
// scan before any window lookup.
func (s *WindowService) Resolve(ctx context.Context, person models.Person, date time.Time) (*models.TimeWindow, error) {
	switch person.Category {
	case models.PersonCategoryStudent:
		return s.singleton(ctx, models.WindowCategoryStudent)
	case models.PersonCategoryTeacher, models.PersonCategoryStaff:
		return s.singleton(ctx, models.WindowCategoryStaff)
	case models.PersonCategorySecurity:
		shift, err := s.roster.ShiftOn(ctx, person.ID, date)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrShiftUnscheduled, "no shift scheduled for this date")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve shift")
		}
		if !models.ShiftScheduled(shift) {
			return nil, appErrors.Clone(appErrors.ErrShiftUnscheduled, "scheduled off for this date")
		}
		window, err := s.windows.SecurityShift(ctx, shift)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrWindowNotConfigured, fmt.Sprintf("no window configured for %s", shift))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift window")
		}
		return window, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInternal, "unknown person category")
	}
}

func (s *WindowService) singleton(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error) {
	window, err := s.windows.Singleton(ctx, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrWindowNotConfigured, fmt.Sprintf("no %s window configured", category))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load window")
	}
	return window, nil
}

// Get returns the configured singleton window for a category, or NotFound
// when it was never configured.
func (s *WindowService) Get(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error) {
	if category == models.WindowCategorySecurity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "security windows are configured per shift")
	}
	window, err := s.windows.Singleton(ctx, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no %s window configured", category))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load window")
	}
	return window, nil
}

// Update replaces the singleton window for a category after checking the
// ordering invariants.
func (s *WindowService) Update(ctx context.Context, category models.WindowCategory, window *models.TimeWindow) (*models.TimeWindow, error) {
	if category == models.WindowCategorySecurity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "security windows are configured per shift")
	}
	if err := window.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.windows.UpsertSingleton(ctx, category, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save window")
	}
	window.Category = category
	return window, nil
}

// Reset removes the singleton window for a category; subsequent scans are
// refused until it is configured again.
func (s *WindowService) Reset(ctx context.Context, category models.WindowCategory) error {
	if category == models.WindowCategorySecurity {
		return appErrors.Clone(appErrors.ErrValidation, "security windows are configured per shift")
	}
	if err := s.windows.ResetSingleton(ctx, category); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset window")
	}
	return nil
}

// ListSecurityWindows returns every per-shift security window.
func (s *WindowService) ListSecurityWindows(ctx context.Context) ([]models.TimeWindow, error) {
	windows, err := s.windows.ListSecurityShifts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shift windows")
	}
	return windows, nil
}

// UpdateSecurityWindow replaces one shift's window after checking the
// ordering invariants and the shift label.
func (s *WindowService) UpdateSecurityWindow(ctx context.Context, window *models.TimeWindow) (*models.TimeWindow, error) {
	shift := strings.TrimSpace(window.Shift)
	if !knownShift(shift) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift: %s", window.Shift))
	}
	window.Shift = shift
	if err := window.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.windows.UpsertSecurityShift(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save shift window")
	}
	window.Category = models.WindowCategorySecurity
	return window, nil
}

// DeleteSecurityWindow removes one shift's window.
func (s *WindowService) DeleteSecurityWindow(ctx context.Context, shift string) error {
	if err := s.windows.DeleteSecurityShift(ctx, shift); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift window")
	}
	return nil
}

func knownShift(shift string) bool {
	for _, known := range models.KnownShifts {
		if shift == known {
			return true
		}
	}
	return false
}
