package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// CalendarRepository persists the two calendar-exception sources: the
// weekly recurring set (a configurations row) and dated holidays.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// WeeklyHolidays returns the stored weekday-name list. A missing row is
// not an error; it means no recurring holidays are defined.
func (r *CalendarRepository) WeeklyHolidays(ctx context.Context) (string, error) {
	const query = `SELECT value FROM configurations WHERE key = $1`
	var value string
	if err := r.db.GetContext(ctx, &value, query, models.ConfigKeyWeeklyHolidays); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("weekly holidays config: %w", err)
	}
	return value, nil
}

// SaveWeeklyHolidays upserts the weekday-name list.
func (r *CalendarRepository) SaveWeeklyHolidays(ctx context.Context, value string) error {
	const query = `INSERT INTO configurations (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, models.ConfigKeyWeeklyHolidays, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("save weekly holidays config: %w", err)
	}
	return nil
}

// HolidayByDate looks up a one-off holiday by exact date.
func (r *CalendarRepository) HolidayByDate(ctx context.Context, date time.Time) (*models.Holiday, error) {
	const query = `SELECT id, date, label, created_at FROM holidays WHERE date = $1`
	var holiday models.Holiday
	if err := r.db.GetContext(ctx, &holiday, query, date); err != nil {
		return nil, err
	}
	return &holiday, nil
}

// ListHolidays returns dated holidays inside a range, ordered by date.
func (r *CalendarRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	const query = `SELECT id, date, label, created_at FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// CreateHoliday inserts a dated holiday; the date is unique.
func (r *CalendarRepository) CreateHoliday(ctx context.Context, holiday *models.Holiday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	if holiday.CreatedAt.IsZero() {
		holiday.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO holidays (id, date, label, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, holiday.ID, holiday.Date, holiday.Label, holiday.CreatedAt); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// DeleteHoliday removes a dated holiday.
func (r *CalendarRepository) DeleteHoliday(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
