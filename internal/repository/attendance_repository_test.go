package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attDate() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceRepositoryHasKind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM student_attendance WHERE person_code = $1 AND date = $2 AND kind = $3)")).
		WithArgs("12345", attDate(), models.AttendanceKindEntry).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasKind(context.Background(), models.PopulationStudents, "12345", attDate(), models.AttendanceKindEntry)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "person_code", "date", "time", "kind", "status", "note", "created_at"}).
		AddRow("rec-1", "12345", attDate(), "07:00:00", "masuk", "Hadir", nil, time.Now())
	mock.ExpectQuery("INSERT INTO student_attendance").
		WithArgs(sqlmock.AnyArg(), "12345", attDate(), sqlmock.AnyArg(), "masuk", "Hadir", nil, sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Insert(context.Background(), models.PopulationStudents, &models.AttendanceRecord{
		PersonCode: "12345",
		Date:       attDate(),
		Time:       models.TimeOfDay(7 * 3600),
		Kind:       models.AttendanceKindEntry,
		Status:     models.AttendanceStatusOnTime,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", stored.ID)
	assert.Equal(t, models.TimeOfDay(7*3600), stored.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsertDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	// ON CONFLICT DO NOTHING yields no returned row for the loser.
	mock.ExpectQuery("INSERT INTO employee_attendance").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Insert(context.Background(), models.PopulationEmployees, &models.AttendanceRecord{
		PersonCode: "EMP01",
		Date:       attDate(),
		Kind:       models.AttendanceKindEntry,
		Status:     models.AttendanceStatusOnTime,
	})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_attendance WHERE person_code = $1 AND date = $2")).
		WithArgs("12345", attDate()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO student_attendance").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_attendance").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.AttendanceRecord{
		{PersonCode: "12345", Date: attDate(), Time: models.TimeOfDay(6 * 3600), Kind: models.AttendanceKindEntry, Status: models.AttendanceStatusOnTime},
		{PersonCode: "12345", Date: attDate(), Time: models.TimeOfDay(13 * 3600), Kind: models.AttendanceKindExit, Status: models.AttendanceStatusOnTime},
	}
	err := repo.ReplaceDay(context.Background(), models.PopulationStudents, "12345", attDate(), records)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceDayRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_attendance")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceDay(context.Background(), models.PopulationStudents, "12345", attDate(), nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListDayStudentJoinsClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "person_code", "person_name", "class_name", "date", "time", "kind", "status", "note", "created_at"}).
		AddRow("rec-1", "12345", "Budi Santoso", "XII IPA 1", attDate(), "07:00:00", "masuk", "Hadir", nil, time.Now())
	mock.ExpectQuery("SELECT a.id, a.person_code, p.full_name AS person_name, c.name AS class_name(?s:.+)FROM student_attendance a(?s:.+)JOIN students p ON p.nis = a.person_code(?s:.+)LEFT JOIN classes c").
		WithArgs(attDate()).
		WillReturnRows(rows)

	records, err := repo.ListDay(context.Background(), models.PopulationStudents, attDate())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Budi Santoso", records[0].PersonName)
	require.NotNil(t, records[0].ClassName)
	assert.Equal(t, "XII IPA 1", *records[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := attDate()
	to := attDate().AddDate(0, 0, 6)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT person_code\\) FROM student_attendance(?s:.+)kind = \\$3 AND status = \\$4").
		WithArgs(from, to, models.AttendanceKindEntry, models.AttendanceStatusOnTime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(80))
	count, err := repo.CountDistinctEntryStatus(context.Background(), models.PopulationStudents, from, to, models.AttendanceStatusOnTime)
	require.NoError(t, err)
	assert.Equal(t, 80, count)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT person_code\\) FROM student_attendance(?s:.+)status = \\$3").
		WithArgs(from, to, models.AttendanceStatusSick).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	count, err = repo.CountDistinctStatus(context.Background(), models.PopulationStudents, from, to, models.AttendanceStatusSick)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT person_code\\) FROM student_attendance(?s:.+)status = ANY").
		WithArgs(from, to, models.AttendanceKindEntry, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(95))
	count, err = repo.CountDistinctRecorded(context.Background(), models.PopulationStudents, from, to)
	require.NoError(t, err)
	assert.Equal(t, 95, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryExportRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"person_code", "person_name", "date", "time", "kind", "status", "note"}).
		AddRow("EMP01", "Siti Rahma", attDate(), "07:05:00", "masuk", "Hadir", nil)
	mock.ExpectQuery("SELECT a.person_code, p.full_name AS person_name(?s:.+)FROM employee_attendance a(?s:.+)JOIN employees p ON p.employee_no = a.person_code").
		WithArgs(attDate(), attDate()).
		WillReturnRows(rows)

	out, err := repo.ExportRows(context.Background(), models.PopulationEmployees, attDate(), attDate())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Siti Rahma", out[0].PersonName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
