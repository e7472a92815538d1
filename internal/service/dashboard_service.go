package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type dashboardAttendanceRepository interface {
	CountDistinctEntryStatus(ctx context.Context, population models.Population, from, to time.Time, status models.AttendanceStatus) (int, error)
	CountDistinctStatus(ctx context.Context, population models.Population, from, to time.Time, status models.AttendanceStatus) (int, error)
	CountDistinctRecorded(ctx context.Context, population models.Population, from, to time.Time) (int, error)
}

type populationCounter interface {
	Count(ctx context.Context) (int, error)
}

type dashboardWindowSource interface {
	Get(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error)
}

// Absent derivation waits until this clock time when no late cutoff is
// configured.
var defaultAbsentCutoff = models.TimeOfDay(8 * 3600)

// DashboardService aggregates distinct-person attendance counts. Absent is
// never stored; it is derived from the population size once the day's late
// cutoff has passed.
type DashboardService struct {
	attendance dashboardAttendanceRepository
	students   populationCounter
	employees  populationCounter
	calendar   holidayResolver
	windows    dashboardWindowSource
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	attendance dashboardAttendanceRepository,
	students populationCounter,
	employees populationCounter,
	calendar holidayResolver,
	windows dashboardWindowSource,
	cache *CacheService,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		attendance: attendance,
		students:   students,
		employees:  employees,
		calendar:   calendar,
		windows:    windows,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *DashboardService) populationSize(ctx context.Context, population models.Population) (int, error) {
	if population == models.PopulationEmployees {
		return s.employees.Count(ctx)
	}
	return s.students.Count(ctx)
}

// DailySummary returns the distinct-person counts for one date. A holiday
// short-circuits to an all-zero summary; Absent stays unknown until the
// late cutoff has passed on the current day.
func (s *DashboardService) DailySummary(ctx context.Context, population models.Population, date time.Time) (*dto.DailySummaryResponse, error) {
	if !population.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown population")
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	cacheKey := dailyCacheKey(population, date)
	var cached dto.DailySummaryResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	holiday, err := s.calendar.IsHoliday(ctx, date)
	if err != nil {
		return nil, err
	}
	if holiday != nil {
		return &dto.DailySummaryResponse{
			Date:        date.Format("2006-01-02"),
			Population:  population,
			Holiday:     holiday,
			AbsentKnown: true,
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	counts, recorded, err := s.countRange(ctx, population, date, date)
	if err != nil {
		return nil, err
	}

	total, err := s.populationSize(ctx, population)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count population")
	}
	counts.Total = total

	absentKnown := s.absentKnown(ctx, population, date)
	if absentKnown {
		counts.Absent = total - recorded
		if counts.Absent < 0 {
			counts.Absent = 0
		}
	}

	res := &dto.DailySummaryResponse{
		Date:        date.Format("2006-01-02"),
		Population:  population,
		Counts:      counts,
		AbsentKnown: absentKnown,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, cacheKey, res, 0); err != nil {
		s.logger.Warn("failed to cache daily summary", zap.Error(err))
	}
	return res, nil
}

// PeriodSummary aggregates over [from, to]. Historical ranges always get a
// derived Absent count.
func (s *DashboardService) PeriodSummary(ctx context.Context, population models.Population, from, to time.Time) (*dto.PeriodSummaryResponse, error) {
	if !population.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown population")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end precedes start")
	}

	counts, recorded, err := s.countRange(ctx, population, from, to)
	if err != nil {
		return nil, err
	}

	total, err := s.populationSize(ctx, population)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count population")
	}
	counts.Total = total
	counts.Absent = total - recorded
	if counts.Absent < 0 {
		counts.Absent = 0
	}

	return &dto.PeriodSummaryResponse{
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		Population:  population,
		Counts:      counts,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *DashboardService) countRange(ctx context.Context, population models.Population, from, to time.Time) (models.StatusCounts, int, error) {
	var counts models.StatusCounts
	var err error

	if counts.OnTime, err = s.attendance.CountDistinctEntryStatus(ctx, population, from, to, models.AttendanceStatusOnTime); err != nil {
		return counts, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count on-time")
	}
	if counts.Late, err = s.attendance.CountDistinctEntryStatus(ctx, population, from, to, models.AttendanceStatusLate); err != nil {
		return counts, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count late")
	}
	if counts.Sick, err = s.attendance.CountDistinctStatus(ctx, population, from, to, models.AttendanceStatusSick); err != nil {
		return counts, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sick")
	}
	if counts.Leave, err = s.attendance.CountDistinctStatus(ctx, population, from, to, models.AttendanceStatusLeave); err != nil {
		return counts, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count leave")
	}

	recorded, err := s.attendance.CountDistinctRecorded(ctx, population, from, to)
	if err != nil {
		return counts, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recorded")
	}
	return counts, recorded, nil
}

// absentKnown reports whether the day is far enough along to call missing
// people absent: any past date, or today once the late cutoff has passed.
func (s *DashboardService) absentKnown(ctx context.Context, population models.Population, date time.Time) bool {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return true
	}
	if date.After(today) {
		return false
	}

	cutoff := defaultAbsentCutoff
	category := models.WindowCategoryStudent
	if population == models.PopulationEmployees {
		category = models.WindowCategoryStaff
	}
	if window, err := s.windows.Get(ctx, category); err == nil {
		if window.LateCutoff != nil {
			cutoff = *window.LateCutoff
		} else {
			cutoff = window.EntryClose
		}
	}
	return models.TimeOfDayFrom(now) > cutoff
}

// dailyCacheKey names the cached daily summary for one population-day.
// Writers invalidate exactly this key.
func dailyCacheKey(population models.Population, date time.Time) string {
	return fmt.Sprintf("dashboard:daily:%s:%s", population, date.Format("2006-01-02"))
}
