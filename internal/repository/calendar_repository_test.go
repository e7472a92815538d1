package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

func TestCalendarRepositoryWeeklyHolidays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM configurations WHERE key = $1")).
		WithArgs(models.ConfigKeyWeeklyHolidays).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("Minggu,Sabtu"))

	value, err := repo.WeeklyHolidays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Minggu,Sabtu", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryWeeklyHolidaysMissingRowMeansEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectQuery("SELECT value FROM configurations").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, err := repo.WeeklyHolidays(context.Background())
	require.NoError(t, err)
	assert.Empty(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositorySaveWeeklyHolidays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("INSERT INTO configurations").
		WithArgs(models.ConfigKeyWeeklyHolidays, "Minggu", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveWeeklyHolidays(context.Background(), "Minggu"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryHolidayByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	rows := sqlmock.NewRows([]string{"id", "date", "label", "created_at"}).
		AddRow("h1", attDate(), "Hari Kemerdekaan", attDate())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, label, created_at FROM holidays WHERE date = $1")).
		WithArgs(attDate()).
		WillReturnRows(rows)

	holiday, err := repo.HolidayByDate(context.Background(), attDate())
	require.NoError(t, err)
	assert.Equal(t, "Hari Kemerdekaan", holiday.Label)

	mock.ExpectQuery("SELECT id, date, label, created_at FROM holidays").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.HolidayByDate(context.Background(), attDate().AddDate(0, 0, 1))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryDeleteHoliday(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM holidays WHERE id = $1")).
		WithArgs("h1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteHoliday(context.Background(), "h1"))

	mock.ExpectExec("DELETE FROM holidays").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.DeleteHoliday(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
