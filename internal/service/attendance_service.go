package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type attendanceRepository interface {
	ReplaceDay(ctx context.Context, population models.Population, code string, date time.Time, records []models.AttendanceRecord) error
	ListDay(ctx context.Context, population models.Population, date time.Time) ([]models.DayRecord, error)
}

// AttendanceService carries the administration override and the day view.
type AttendanceService struct {
	attendance attendanceRepository
	students   scanStudentRepository
	employees  scanEmployeeRepository
	calendar   holidayResolver
	cache      dashboardCacheInvalidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(
	attendance attendanceRepository,
	students scanStudentRepository,
	employees scanEmployeeRepository,
	calendar holidayResolver,
	cache dashboardCacheInvalidator,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		students:   students,
		employees:  employees,
		calendar:   calendar,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// SetDailyStatus replaces the person's whole day with rows representing
// the chosen status: Present becomes an entry/exit pair, the leave
// statuses become a single synthesized row. Late cannot be assigned by
// hand.
func (s *AttendanceService) SetDailyStatus(ctx context.Context, population models.Population, code string, date time.Time, status models.AttendanceStatus, note *string) error {
	if !population.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown population")
	}
	if !status.Valid() || status == models.AttendanceStatusLate {
		return appErrors.Clone(appErrors.ErrValidation, "status must be Hadir, Sakit, Izin or Alfa")
	}

	if _, err := s.findPerson(ctx, population, code); err != nil {
		return err
	}

	var records []models.AttendanceRecord
	if status == models.AttendanceStatusOnTime {
		// Both synthesized rows carry the moment of the override, which
		// is what the audit trail wants to show.
		stamp := models.TimeOfDayFrom(s.now())
		records = []models.AttendanceRecord{
			{PersonCode: code, Date: date, Time: stamp, Kind: models.AttendanceKindEntry, Status: status, Note: note},
			{PersonCode: code, Date: date, Time: stamp, Kind: models.AttendanceKindExit, Status: status, Note: note},
		}
	} else {
		records = []models.AttendanceRecord{
			{PersonCode: code, Date: date, Kind: models.AttendanceKindOther, Status: status, Note: note},
		}
	}

	if err := s.attendance.ReplaceDay(ctx, population, code, date, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace day")
	}

	if s.cache != nil {
		s.cache.InvalidateDaily(ctx, population, date)
	}

	s.logger.Info("daily status overridden",
		zap.String("population", string(population)),
		zap.String("person", code),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("status", string(status)))
	return nil
}

func (s *AttendanceService) findPerson(ctx context.Context, population models.Population, code string) (*models.Person, error) {
	if population == models.PopulationStudents {
		student, err := s.students.FindByNIS(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
		}
		person := models.PersonFromStudent(student)
		return &person, nil
	}
	employee, err := s.employees.FindByEmployeeNo(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up employee")
	}
	person := models.PersonFromEmployee(employee)
	return &person, nil
}

// DayView returns the per-person entry/exit pairs for one date, with the
// holiday flag so the UI can label an empty day.
func (s *AttendanceService) DayView(ctx context.Context, population models.Population, date time.Time) (*dto.DayViewResponse, error) {
	if !population.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown population")
	}

	holiday, err := s.calendar.IsHoliday(ctx, date)
	if err != nil {
		return nil, err
	}

	records, err := s.attendance.ListDay(ctx, population, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list day records")
	}

	byPerson := make(map[string]*models.AttendanceDay)
	order := make([]string, 0, len(records))
	for i := range records {
		rec := records[i]
		day, ok := byPerson[rec.PersonCode]
		if !ok {
			day = &models.AttendanceDay{
				PersonCode: rec.PersonCode,
				PersonName: rec.PersonName,
				ClassName:  rec.ClassName,
			}
			byPerson[rec.PersonCode] = day
			order = append(order, rec.PersonCode)
		}
		record := rec.AttendanceRecord
		if rec.Kind == models.AttendanceKindExit {
			day.Exit = &record
		} else {
			day.Entry = &record
		}
	}

	people := make([]models.AttendanceDay, 0, len(order))
	for _, code := range order {
		people = append(people, *byPerson[code])
	}

	return &dto.DayViewResponse{
		Date:       date.Format("2006-01-02"),
		Population: population,
		Holiday:    holiday,
		People:     people,
	}, nil
}
