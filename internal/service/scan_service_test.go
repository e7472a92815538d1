package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type stubStudentRepo struct {
	students map[string]*models.Student
}

func (s *stubStudentRepo) FindByNIS(_ context.Context, nis string) (*models.Student, error) {
	if st, ok := s.students[nis]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

type stubEmployeeRepo struct {
	employees map[string]*models.Employee
}

func (s *stubEmployeeRepo) FindByEmployeeNo(_ context.Context, no string) (*models.Employee, error) {
	if e, ok := s.employees[no]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type stubAttendanceRepo struct {
	existing     map[string]bool
	inserted     []*models.AttendanceRecord
	insertErr    error
	hasKindCalls int
}

func (s *stubAttendanceRepo) HasKind(_ context.Context, _ models.Population, code string, _ time.Time, kind models.AttendanceKind) (bool, error) {
	s.hasKindCalls++
	return s.existing[code+":"+string(kind)], nil
}

func (s *stubAttendanceRepo) Insert(_ context.Context, _ models.Population, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	stored := *record
	stored.ID = "rec-1"
	s.inserted = append(s.inserted, &stored)
	return &stored, nil
}

type stubHolidayResolver struct {
	info *models.HolidayInfo
}

func (s *stubHolidayResolver) IsHoliday(_ context.Context, _ time.Time) (*models.HolidayInfo, error) {
	return s.info, nil
}

type stubWindowResolver struct {
	window *models.TimeWindow
	err    error
}

func (s *stubWindowResolver) Resolve(_ context.Context, _ models.Person, _ time.Time) (*models.TimeWindow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.window, nil
}

type stubScanNotifier struct {
	calls int
	last  *models.AttendanceRecord
}

func (s *stubScanNotifier) NotifyScan(_ models.Person, record *models.AttendanceRecord) {
	s.calls++
	s.last = record
}

type stubScanMetrics struct {
	outcomes []string
}

func (s *stubScanMetrics) RecordScan(_, outcome string) {
	s.outcomes = append(s.outcomes, outcome)
}

type stubCacheInvalidator struct {
	populations []models.Population
	dates       []time.Time
}

func (s *stubCacheInvalidator) InvalidateDaily(_ context.Context, population models.Population, date time.Time) {
	s.populations = append(s.populations, population)
	s.dates = append(s.dates, date)
}

func mustClock(t *testing.T, value string) models.TimeOfDay {
	t.Helper()
	parsed, err := models.ParseTimeOfDay(value)
	require.NoError(t, err)
	return parsed
}

func clockPtr(t *testing.T, value string) *models.TimeOfDay {
	t.Helper()
	parsed := mustClock(t, value)
	return &parsed
}

func schoolWindow(t *testing.T) *models.TimeWindow {
	t.Helper()
	return &models.TimeWindow{
		Category:   models.WindowCategoryStudent,
		EntryOpen:  mustClock(t, "06:00"),
		EntryClose: mustClock(t, "07:15"),
		LateCutoff: clockPtr(t, "08:00"),
		ExitOpen:   mustClock(t, "13:00"),
		ExitClose:  mustClock(t, "14:00"),
	}
}

func newScanFixture(t *testing.T, window *models.TimeWindow) (*ScanService, *stubAttendanceRepo, *stubScanNotifier, *stubScanMetrics) {
	t.Helper()
	students := &stubStudentRepo{students: map[string]*models.Student{
		"12345": {ID: "st-1", NIS: "12345", FullName: "Budi Santoso"},
	}}
	employees := &stubEmployeeRepo{employees: map[string]*models.Employee{
		"EMP01": {ID: "em-1", EmployeeNo: "EMP01", FullName: "Siti Rahma", Role: models.EmployeeRoleTeacher},
		"SEC01": {ID: "em-2", EmployeeNo: "SEC01", FullName: "Joko Widodo", Role: models.EmployeeRoleSecurity},
	}}
	attendance := &stubAttendanceRepo{existing: map[string]bool{}}
	notifier := &stubScanNotifier{}
	metrics := &stubScanMetrics{}
	svc := NewScanService(students, employees, attendance, &stubHolidayResolver{}, &stubWindowResolver{window: window}, notifier, metrics, nil, zap.NewNop())
	return svc, attendance, notifier, metrics
}

func scanAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestScanClassificationBranches(t *testing.T) {
	cases := []struct {
		name   string
		at     time.Time
		kind   models.AttendanceKind
		status models.AttendanceStatus
		msg    string
	}{
		{"on time entry", scanAt(7, 0), models.AttendanceKindEntry, models.AttendanceStatusOnTime, "Absen masuk dicatat: Hadir"},
		{"late entry", scanAt(7, 30), models.AttendanceKindEntry, models.AttendanceStatusLate, "Absen masuk dicatat: Terlambat"},
		{"late cutoff boundary", scanAt(8, 0), models.AttendanceKindEntry, models.AttendanceStatusLate, "Absen masuk dicatat: Terlambat"},
		{"exit", scanAt(13, 30), models.AttendanceKindExit, models.AttendanceStatusOnTime, "Absen pulang berhasil dicatat"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, attendance, _, _ := newScanFixture(t, schoolWindow(t))
			svc.now = func() time.Time { return tc.at }

			res, err := svc.ProcessScan(context.Background(), "S12345")
			require.NoError(t, err)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.msg, res.Message)
			require.Len(t, attendance.inserted, 1)
			assert.Equal(t, tc.kind, attendance.inserted[0].Kind)
			assert.Equal(t, tc.status, attendance.inserted[0].Status)
		})
	}
}

func TestScanOutsideWindowRejected(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
	}{
		{"before entry opens", scanAt(5, 30)},
		{"dead zone between cutoff and exit", scanAt(10, 0)},
		{"after exit closes", scanAt(15, 0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, attendance, _, _ := newScanFixture(t, schoolWindow(t))
			svc.now = func() time.Time { return tc.at }

			_, err := svc.ProcessScan(context.Background(), "S12345")
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrOutsideWindow.Code, appErrors.FromError(err).Code)
			assert.Equal(t, "Di luar jam absen", appErrors.FromError(err).Message)
			assert.Empty(t, attendance.inserted)
		})
	}
}

func TestScanNoLateCutoffMeansNoLateBranch(t *testing.T) {
	window := schoolWindow(t)
	window.LateCutoff = nil
	svc, _, _, _ := newScanFixture(t, window)
	svc.now = func() time.Time { return scanAt(7, 30) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutsideWindow.Code, appErrors.FromError(err).Code)
}

func TestScanHolidaySuppressed(t *testing.T) {
	svc, attendance, _, _ := newScanFixture(t, schoolWindow(t))
	svc.calendar = &stubHolidayResolver{info: &models.HolidayInfo{Source: models.HolidaySourceDated, Reason: "Hari Kemerdekaan"}}
	svc.now = func() time.Time { return scanAt(7, 0) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrHoliday.Code, appErr.Code)
	assert.Equal(t, "Hari libur: Hari Kemerdekaan", appErr.Message)
	assert.Empty(t, attendance.inserted)
}

func TestScanDuplicateEntryRejected(t *testing.T) {
	svc, attendance, notifier, _ := newScanFixture(t, schoolWindow(t))
	attendance.existing["12345:masuk"] = true
	svc.now = func() time.Time { return scanAt(7, 0) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyRecorded.Code, appErr.Code)
	assert.Equal(t, "Absen masuk sudah tercatat hari ini", appErr.Message)
	assert.Empty(t, attendance.inserted)
	assert.Zero(t, notifier.calls)
}

func TestScanDuplicateLostRaceRejected(t *testing.T) {
	svc, attendance, _, _ := newScanFixture(t, schoolWindow(t))
	attendance.insertErr = repository.ErrDuplicateRecord
	svc.now = func() time.Time { return scanAt(13, 30) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyRecorded.Code, appErr.Code)
	assert.Equal(t, "Absen pulang sudah tercatat hari ini", appErr.Message)
}

func TestScanUnknownPayloads(t *testing.T) {
	svc, _, _, _ := newScanFixture(t, schoolWindow(t))
	svc.now = func() time.Time { return scanAt(7, 0) }

	cases := []struct {
		name    string
		payload string
		code    string
	}{
		{"unregistered student", "S99999", appErrors.ErrUnknownIdentity.Code},
		{"unregistered employee", "PZZZZZ", appErrors.ErrUnknownIdentity.Code},
		{"bad prefix", "X12345", appErrors.ErrInvalidPayload.Code},
		{"too short", "S", appErrors.ErrInvalidPayload.Code},
		{"blank", "   ", appErrors.ErrInvalidPayload.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProcessScan(context.Background(), tc.payload)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestScanPrefixCaseInsensitive(t *testing.T) {
	svc, _, _, _ := newScanFixture(t, schoolWindow(t))
	svc.now = func() time.Time { return scanAt(7, 0) }

	res, err := svc.ProcessScan(context.Background(), "s12345")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", res.PersonName)
	assert.Equal(t, models.PersonCategoryStudent, res.Category)
}

func TestScanEmployeeRoleRouting(t *testing.T) {
	svc, attendance, _, _ := newScanFixture(t, schoolWindow(t))
	svc.now = func() time.Time { return scanAt(7, 0) }

	res, err := svc.ProcessScan(context.Background(), "PEMP01")
	require.NoError(t, err)
	assert.Equal(t, models.PersonCategoryTeacher, res.Category)
	require.Len(t, attendance.inserted, 1)
}

func TestScanSecurityWindowErrorsLocalized(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"unscheduled", appErrors.Clone(appErrors.ErrShiftUnscheduled, "no shift scheduled for this date"), appErrors.ErrShiftUnscheduled.Code, "Tidak ada jadwal shift hari ini"},
		{"shift window missing", appErrors.Clone(appErrors.ErrWindowNotConfigured, "window not configured"), appErrors.ErrWindowNotConfigured.Code, "Jam absen belum diatur"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, attendance, _, _ := newScanFixture(t, nil)
			svc.windows = &stubWindowResolver{err: tc.err}
			svc.now = func() time.Time { return scanAt(7, 0) }

			_, err := svc.ProcessScan(context.Background(), "PSEC01")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Empty(t, attendance.inserted)
		})
	}
}

func TestScanNotifiesAfterStore(t *testing.T) {
	svc, attendance, notifier, metrics := newScanFixture(t, schoolWindow(t))
	svc.now = func() time.Time { return scanAt(7, 0) }

	res, err := svc.ProcessScan(context.Background(), "S12345")
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
	require.NotNil(t, notifier.last)
	assert.Equal(t, "rec-1", notifier.last.ID)
	assert.Equal(t, "07:00:00", res.Time)
	require.Len(t, attendance.inserted, 1)
	assert.Equal(t, []string{"accepted"}, metrics.outcomes)
}

func TestScanMetricsRecordRefusalCode(t *testing.T) {
	svc, _, _, metrics := newScanFixture(t, schoolWindow(t))
	svc.now = func() time.Time { return scanAt(10, 0) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	assert.Equal(t, []string{appErrors.ErrOutsideWindow.Code}, metrics.outcomes)
}

func TestScanInvalidatesDashboardDay(t *testing.T) {
	svc, _, _, _ := newScanFixture(t, schoolWindow(t))
	cache := &stubCacheInvalidator{}
	svc.cache = cache
	svc.now = func() time.Time { return scanAt(7, 0) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.NoError(t, err)
	require.Len(t, cache.dates, 1)
	assert.Equal(t, models.PopulationStudents, cache.populations[0])
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), cache.dates[0])
}

func TestScanRefusalLeavesCacheAlone(t *testing.T) {
	svc, _, _, _ := newScanFixture(t, schoolWindow(t))
	cache := &stubCacheInvalidator{}
	svc.cache = cache
	svc.now = func() time.Time { return scanAt(10, 0) }

	_, err := svc.ProcessScan(context.Background(), "S12345")
	require.Error(t, err)
	assert.Empty(t, cache.dates)
}
