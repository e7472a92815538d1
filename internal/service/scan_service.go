package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type scanStudentRepository interface {
	FindByNIS(ctx context.Context, nis string) (*models.Student, error)
}

type scanEmployeeRepository interface {
	FindByEmployeeNo(ctx context.Context, employeeNo string) (*models.Employee, error)
}

type scanAttendanceRepository interface {
	HasKind(ctx context.Context, population models.Population, code string, date time.Time, kind models.AttendanceKind) (bool, error)
	Insert(ctx context.Context, population models.Population, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
}

type holidayResolver interface {
	IsHoliday(ctx context.Context, date time.Time) (*models.HolidayInfo, error)
}

type windowResolver interface {
	Resolve(ctx context.Context, person models.Person, date time.Time) (*models.TimeWindow, error)
}

type scanNotifier interface {
	NotifyScan(person models.Person, record *models.AttendanceRecord)
}

type scanMetrics interface {
	RecordScan(category, outcome string)
}

type dashboardCacheInvalidator interface {
	InvalidateDaily(ctx context.Context, population models.Population, date time.Time)
}

// ScanService evaluates QR scans: identity, calendar, window, duplicate,
// then a stored record. Refusal messages are what the kiosk displays.
type ScanService struct {
	students   scanStudentRepository
	employees  scanEmployeeRepository
	attendance scanAttendanceRepository
	calendar   holidayResolver
	windows    windowResolver
	notifier   scanNotifier
	metrics    scanMetrics
	cache      dashboardCacheInvalidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewScanService constructs a ScanService instance.
func NewScanService(
	students scanStudentRepository,
	employees scanEmployeeRepository,
	attendance scanAttendanceRepository,
	calendar holidayResolver,
	windows windowResolver,
	notifier scanNotifier,
	metrics scanMetrics,
	cache dashboardCacheInvalidator,
	logger *zap.Logger,
) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		students:   students,
		employees:  employees,
		attendance: attendance,
		calendar:   calendar,
		windows:    windows,
		notifier:   notifier,
		metrics:    metrics,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessScan runs the full evaluation for one QR payload at the current
// clock time and persists the resulting record.
func (s *ScanService) ProcessScan(ctx context.Context, payload string) (*dto.ScanResponse, error) {
	res, err := s.processAt(ctx, payload, s.now())
	s.observe(res, err)
	return res, err
}

func (s *ScanService) observe(res *dto.ScanResponse, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.RecordScan("unknown", appErrors.FromError(err).Code)
		return
	}
	s.metrics.RecordScan(string(res.Category), "accepted")
}

func (s *ScanService) processAt(ctx context.Context, payload string, at time.Time) (*dto.ScanResponse, error) {
	person, err := s.identify(ctx, payload)
	if err != nil {
		return nil, err
	}

	date := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	clock := models.TimeOfDayFrom(at)

	holiday, err := s.calendar.IsHoliday(ctx, date)
	if err != nil {
		return nil, err
	}
	if holiday != nil {
		return nil, appErrors.Clone(appErrors.ErrHoliday, fmt.Sprintf("Hari libur: %s", holiday.Reason))
	}

	window, err := s.windows.Resolve(ctx, *person, date)
	if err != nil {
		return nil, s.localizeWindowError(err)
	}

	kind, status, ok := window.Classify(clock)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrOutsideWindow, "Di luar jam absen")
	}

	exists, err := s.attendance.HasKind(ctx, person.Population, person.Code, date, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing record")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyRecorded, alreadyRecordedMessage(kind))
	}

	record := &models.AttendanceRecord{
		PersonCode: person.Code,
		Date:       date,
		Time:       clock,
		Kind:       kind,
		Status:     status,
	}
	stored, err := s.attendance.Insert(ctx, person.Population, record)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyRecorded, alreadyRecordedMessage(kind))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store record")
	}

	if s.cache != nil {
		s.cache.InvalidateDaily(ctx, person.Population, date)
	}
	if s.notifier != nil {
		s.notifier.NotifyScan(*person, stored)
	}

	s.logger.Info("scan accepted",
		zap.String("person", person.Code),
		zap.String("category", string(person.Category)),
		zap.String("kind", string(kind)),
		zap.String("status", string(status)))

	return &dto.ScanResponse{
		PersonCode: person.Code,
		PersonName: person.Name,
		Category:   person.Category,
		Date:       date.Format("2006-01-02"),
		Time:       stored.Time.String(),
		Kind:       kind,
		Status:     status,
		Message:    successMessage(kind, status),
	}, nil
}

// identify parses the QR payload and loads the person it names. The first
// character selects the population; matching is case-insensitive.
func (s *ScanService) identify(ctx context.Context, payload string) (*models.Person, error) {
	trimmed := strings.TrimSpace(payload)
	if len(trimmed) < 2 {
		return nil, appErrors.Clone(appErrors.ErrInvalidPayload, "Kode QR tidak valid")
	}
	prefix := trimmed[:1]
	code := trimmed[1:]

	switch strings.ToLower(prefix) {
	case "s":
		student, err := s.students.FindByNIS(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrUnknownIdentity, "Kode QR tidak terdaftar")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
		}
		person := models.PersonFromStudent(student)
		return &person, nil
	case "p":
		employee, err := s.employees.FindByEmployeeNo(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrUnknownIdentity, "Kode QR tidak terdaftar")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up employee")
		}
		person := models.PersonFromEmployee(employee)
		return &person, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidPayload, "Kode QR tidak valid")
	}
}

// localizeWindowError swaps the resolver's internal messages for the
// kiosk-facing ones, keeping the error codes intact.
func (s *ScanService) localizeWindowError(err error) error {
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrShiftUnscheduled.Code:
		return appErrors.Clone(appErrors.ErrShiftUnscheduled, "Tidak ada jadwal shift hari ini")
	case appErrors.ErrWindowNotConfigured.Code:
		return appErrors.Clone(appErrors.ErrWindowNotConfigured, "Jam absen belum diatur")
	default:
		return err
	}
}

func alreadyRecordedMessage(kind models.AttendanceKind) string {
	if kind == models.AttendanceKindExit {
		return "Absen pulang sudah tercatat hari ini"
	}
	return "Absen masuk sudah tercatat hari ini"
}

func successMessage(kind models.AttendanceKind, status models.AttendanceStatus) string {
	if kind == models.AttendanceKindExit {
		return "Absen pulang berhasil dicatat"
	}
	if status == models.AttendanceStatusLate {
		return "Absen masuk dicatat: Terlambat"
	}
	return "Absen masuk dicatat: Hadir"
}
