package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type mockCountRepo struct {
	entryStatus map[models.AttendanceStatus]int
	anyStatus   map[models.AttendanceStatus]int
	recorded    int
	calls       int
}

func (m *mockCountRepo) CountDistinctEntryStatus(_ context.Context, _ models.Population, _, _ time.Time, status models.AttendanceStatus) (int, error) {
	m.calls++
	return m.entryStatus[status], nil
}

func (m *mockCountRepo) CountDistinctStatus(_ context.Context, _ models.Population, _, _ time.Time, status models.AttendanceStatus) (int, error) {
	m.calls++
	return m.anyStatus[status], nil
}

func (m *mockCountRepo) CountDistinctRecorded(_ context.Context, _ models.Population, _, _ time.Time) (int, error) {
	m.calls++
	return m.recorded, nil
}

type fixedCounter struct {
	total int
}

func (f *fixedCounter) Count(_ context.Context) (int, error) {
	return f.total, nil
}

type stubWindowSource struct {
	window *models.TimeWindow
}

func (s *stubWindowSource) Get(_ context.Context, _ models.WindowCategory) (*models.TimeWindow, error) {
	if s.window == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no window configured")
	}
	return s.window, nil
}

type stubCacheStore struct {
	store map[string][]byte
}

func (s *stubCacheStore) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheStore) DeleteByPattern(_ context.Context, _ string) error {
	return nil
}

func newDashboardFixture(t *testing.T, repo *mockCountRepo, window *models.TimeWindow) *DashboardService {
	t.Helper()
	svc := NewDashboardService(
		repo,
		&fixedCounter{total: 100},
		&fixedCounter{total: 20},
		&stubHolidayResolver{},
		&stubWindowSource{window: window},
		nil,
		zap.NewNop(),
	)
	return svc
}

func summaryDate() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
}

func TestDailySummaryPastDateDerivesAbsent(t *testing.T) {
	repo := &mockCountRepo{
		entryStatus: map[models.AttendanceStatus]int{
			models.AttendanceStatusOnTime: 80,
			models.AttendanceStatusLate:   10,
		},
		anyStatus: map[models.AttendanceStatus]int{
			models.AttendanceStatusSick:  3,
			models.AttendanceStatusLeave: 2,
		},
		recorded: 95,
	}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.now = func() time.Time { return summaryDate().AddDate(0, 0, 1) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.True(t, res.AbsentKnown)
	assert.Equal(t, 80, res.Counts.OnTime)
	assert.Equal(t, 10, res.Counts.Late)
	assert.Equal(t, 3, res.Counts.Sick)
	assert.Equal(t, 2, res.Counts.Leave)
	assert.Equal(t, 5, res.Counts.Absent)
	assert.Equal(t, 100, res.Counts.Total)
}

func TestDailySummaryTodayBeforeCutoff(t *testing.T) {
	repo := &mockCountRepo{recorded: 40}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	// 07:30 is before the window's 08:00 late cutoff.
	svc.now = func() time.Time { return summaryDate().Add(7*time.Hour + 30*time.Minute) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.False(t, res.AbsentKnown)
	assert.Zero(t, res.Counts.Absent)
}

func TestDailySummaryTodayAfterCutoff(t *testing.T) {
	repo := &mockCountRepo{recorded: 40}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.now = func() time.Time { return summaryDate().Add(9 * time.Hour) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.True(t, res.AbsentKnown)
	assert.Equal(t, 60, res.Counts.Absent)
}

func TestDailySummaryUnconfiguredWindowFallsBackToDefaultCutoff(t *testing.T) {
	repo := &mockCountRepo{recorded: 40}
	svc := newDashboardFixture(t, repo, nil)
	svc.now = func() time.Time { return summaryDate().Add(8*time.Hour + 30*time.Minute) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.True(t, res.AbsentKnown)
}

func TestDailySummaryFutureDateAbsentUnknown(t *testing.T) {
	repo := &mockCountRepo{}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.now = func() time.Time { return summaryDate().AddDate(0, 0, -3) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.False(t, res.AbsentKnown)
}

func TestDailySummaryHolidayShortCircuits(t *testing.T) {
	repo := &mockCountRepo{}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.calendar = &stubHolidayResolver{info: &models.HolidayInfo{Source: models.HolidaySourceWeekly, Reason: "Minggu"}}

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	require.NotNil(t, res.Holiday)
	assert.Equal(t, models.StatusCounts{}, res.Counts)
	assert.True(t, res.AbsentKnown)
	assert.Zero(t, repo.calls)
}

func TestDailySummaryAbsentNeverNegative(t *testing.T) {
	repo := &mockCountRepo{recorded: 130}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.now = func() time.Time { return summaryDate().AddDate(0, 0, 1) }

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.Zero(t, res.Counts.Absent)
}

func TestDailySummaryServedFromCache(t *testing.T) {
	repo := &mockCountRepo{recorded: 95}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.cache = NewCacheService(&stubCacheStore{}, nil, time.Minute, zap.NewNop(), true)
	svc.now = func() time.Time { return summaryDate().AddDate(0, 0, 1) }

	_, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	firstCalls := repo.calls
	require.NotZero(t, firstCalls)

	res, err := svc.DailySummary(context.Background(), models.PopulationStudents, summaryDate())
	require.NoError(t, err)
	assert.Equal(t, firstCalls, repo.calls)
	assert.Equal(t, 5, res.Counts.Absent)
}

func TestDailySummaryEmployeePopulationUsesEmployeeTotal(t *testing.T) {
	repo := &mockCountRepo{recorded: 18}
	svc := newDashboardFixture(t, repo, schoolWindow(t))
	svc.now = func() time.Time { return summaryDate().AddDate(0, 0, 1) }

	res, err := svc.DailySummary(context.Background(), models.PopulationEmployees, summaryDate())
	require.NoError(t, err)
	assert.Equal(t, 20, res.Counts.Total)
	assert.Equal(t, 2, res.Counts.Absent)
}

func TestPeriodSummary(t *testing.T) {
	repo := &mockCountRepo{
		entryStatus: map[models.AttendanceStatus]int{models.AttendanceStatusOnTime: 98},
		recorded:    98,
	}
	svc := newDashboardFixture(t, repo, schoolWindow(t))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	res, err := svc.PeriodSummary(context.Background(), models.PopulationStudents, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counts.Absent)

	_, err = svc.PeriodSummary(context.Background(), models.PopulationStudents, to, from)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
