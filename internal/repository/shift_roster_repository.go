package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// ShiftRosterRepository persists the monthly security roster.
type ShiftRosterRepository struct {
	db *sqlx.DB
}

// NewShiftRosterRepository constructs the repository.
func NewShiftRosterRepository(db *sqlx.DB) *ShiftRosterRepository {
	return &ShiftRosterRepository{db: db}
}

// ShiftOn returns the roster value for one employee on one date.
// sql.ErrNoRows passes through; the caller decides what an absent row
// means.
func (r *ShiftRosterRepository) ShiftOn(ctx context.Context, employeeID string, date time.Time) (string, error) {
	const query = `SELECT shift FROM shift_assignments WHERE employee_id = $1 AND date = $2`
	var shift string
	if err := r.db.GetContext(ctx, &shift, query, employeeID, date); err != nil {
		return "", err
	}
	return shift, nil
}

// ListRange returns every assignment with a date inside [from, to].
func (r *ShiftRosterRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.ShiftAssignment, error) {
	const query = `SELECT id, employee_id, date, shift, created_at FROM shift_assignments
WHERE date >= $1 AND date <= $2 ORDER BY employee_id ASC, date ASC`
	var assignments []models.ShiftAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, from, to); err != nil {
		return nil, fmt.Errorf("list shift assignments: %w", err)
	}
	return assignments, nil
}

// ReplaceRange deletes every assignment for the given employees inside
// [from, to] and inserts the submitted set, all in one transaction.
func (r *ShiftRosterRepository) ReplaceRange(ctx context.Context, from, to time.Time, employeeIDs []string, assignments []models.ShiftAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster replace: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM shift_assignments WHERE date >= $1 AND date <= $2 AND employee_id = ANY($3)`
	if _, err := tx.ExecContext(ctx, deleteQuery, from, to, pq.Array(employeeIDs)); err != nil {
		return fmt.Errorf("clear roster range: %w", err)
	}

	const insertQuery = `INSERT INTO shift_assignments (id, employee_id, date, shift, created_at)
VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, insertQuery, a.ID, a.EmployeeID, a.Date, a.Shift, a.CreatedAt); err != nil {
			return fmt.Errorf("insert roster assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster replace: %w", err)
	}
	committed = true
	return nil
}

// InsertMissing adds assignments without touching existing rows; the
// (employee, date) unique index absorbs concurrent duplicates. Returns how
// many rows were actually inserted. The whole batch commits or none does.
func (r *ShiftRosterRepository) InsertMissing(ctx context.Context, assignments []models.ShiftAssignment) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin roster copy: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO shift_assignments (id, employee_id, date, shift, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (employee_id, date) DO NOTHING RETURNING id`
	now := time.Now().UTC()
	inserted := 0
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		var insertedID string
		err := tx.QueryRowxContext(ctx, query, a.ID, a.EmployeeID, a.Date, a.Shift, a.CreatedAt).Scan(&insertedID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("insert missing assignment: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit roster copy: %w", err)
	}
	committed = true
	return inserted, nil
}
