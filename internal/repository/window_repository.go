package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// WindowRepository persists the three time-window shapes: singleton student
// and staff rows, and per-shift security rows.
type WindowRepository struct {
	db *sqlx.DB
}

// NewWindowRepository constructs the repository.
func NewWindowRepository(db *sqlx.DB) *WindowRepository {
	return &WindowRepository{db: db}
}

const singletonRowID = "default"

func singletonTable(category models.WindowCategory) (string, error) {
	switch category {
	case models.WindowCategoryStudent:
		return "student_time_windows", nil
	case models.WindowCategoryStaff:
		return "staff_time_windows", nil
	default:
		return "", fmt.Errorf("category %s has no singleton window table", category)
	}
}

// Singleton returns the student or staff window. sql.ErrNoRows passes
// through so callers can map it to a missing-configuration error.
func (r *WindowRepository) Singleton(ctx context.Context, category models.WindowCategory) (*models.TimeWindow, error) {
	table, err := singletonTable(category)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, entry_open, entry_close, late_cutoff, exit_open, exit_close FROM %s LIMIT 1`, table)
	var window models.TimeWindow
	if err := r.db.GetContext(ctx, &window, query); err != nil {
		return nil, err
	}
	window.Category = category
	return &window, nil
}

// UpsertSingleton writes the student or staff window, creating the row on
// first save.
func (r *WindowRepository) UpsertSingleton(ctx context.Context, category models.WindowCategory, window *models.TimeWindow) error {
	table, err := singletonTable(category)
	if err != nil {
		return err
	}
	// Singleton tables carry a fixed id so the upsert stays a single
	// statement.
	window.ID = singletonRowID
	query := fmt.Sprintf(`INSERT INTO %s (id, entry_open, entry_close, late_cutoff, exit_open, exit_close, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET entry_open = EXCLUDED.entry_open, entry_close = EXCLUDED.entry_close,
late_cutoff = EXCLUDED.late_cutoff, exit_open = EXCLUDED.exit_open, exit_close = EXCLUDED.exit_close,
updated_at = EXCLUDED.updated_at`, table)
	if _, err := r.db.ExecContext(ctx, query, window.ID, window.EntryOpen, window.EntryClose, window.LateCutoff, window.ExitOpen, window.ExitClose, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// ResetSingleton removes the student or staff window entirely.
func (r *WindowRepository) ResetSingleton(ctx context.Context, category models.WindowCategory) error {
	table, err := singletonTable(category)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("reset %s: %w", table, err)
	}
	return nil
}

// SecurityShift returns the window configured for one shift label.
// sql.ErrNoRows means the shift is unconfigured.
func (r *WindowRepository) SecurityShift(ctx context.Context, shift string) (*models.TimeWindow, error) {
	const query = `SELECT id, shift_name, entry_open, entry_close, late_cutoff, exit_open, exit_close
FROM security_shift_windows WHERE shift_name = $1`
	var window models.TimeWindow
	if err := r.db.GetContext(ctx, &window, query, shift); err != nil {
		return nil, err
	}
	window.Category = models.WindowCategorySecurity
	return &window, nil
}

// ListSecurityShifts returns every configured shift window.
func (r *WindowRepository) ListSecurityShifts(ctx context.Context) ([]models.TimeWindow, error) {
	const query = `SELECT id, shift_name, entry_open, entry_close, late_cutoff, exit_open, exit_close
FROM security_shift_windows ORDER BY shift_name ASC`
	var windows []models.TimeWindow
	if err := r.db.SelectContext(ctx, &windows, query); err != nil {
		return nil, fmt.Errorf("list security shift windows: %w", err)
	}
	for i := range windows {
		windows[i].Category = models.WindowCategorySecurity
	}
	return windows, nil
}

// UpsertSecurityShift writes the window for a shift label.
func (r *WindowRepository) UpsertSecurityShift(ctx context.Context, window *models.TimeWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	const query = `INSERT INTO security_shift_windows (id, shift_name, entry_open, entry_close, late_cutoff, exit_open, exit_close, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (shift_name) DO UPDATE SET entry_open = EXCLUDED.entry_open, entry_close = EXCLUDED.entry_close,
late_cutoff = EXCLUDED.late_cutoff, exit_open = EXCLUDED.exit_open, exit_close = EXCLUDED.exit_close,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, window.ID, window.Shift, window.EntryOpen, window.EntryClose, window.LateCutoff, window.ExitOpen, window.ExitClose, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert security shift window: %w", err)
	}
	return nil
}

// DeleteSecurityShift removes one shift's window; an unknown shift is a
// no-op.
func (r *WindowRepository) DeleteSecurityShift(ctx context.Context, shift string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM security_shift_windows WHERE shift_name = $1`, shift); err != nil {
		return fmt.Errorf("delete security shift window: %w", err)
	}
	return nil
}
