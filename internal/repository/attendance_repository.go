package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// ErrDuplicateRecord signals that a record of the same kind already exists
// for the person and date; the unique index is the authoritative backstop
// against concurrent scans.
var ErrDuplicateRecord = errors.New("attendance record already exists for this kind and date")

// AttendanceRepository persists attendance rows for both populations. The
// two tables share a shape; the population selects which one a query hits.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func attendanceTable(population models.Population) string {
	if population == models.PopulationEmployees {
		return "employee_attendance"
	}
	return "student_attendance"
}

func personTableJoin(population models.Population) string {
	if population == models.PopulationEmployees {
		return "JOIN employees p ON p.employee_no = a.person_code"
	}
	return "JOIN students p ON p.nis = a.person_code"
}

// HasKind reports whether a record of the given kind exists for the person
// on the date.
func (r *AttendanceRepository) HasKind(ctx context.Context, population models.Population, code string, date time.Time, kind models.AttendanceKind) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE person_code = $1 AND date = $2 AND kind = $3)`, attendanceTable(population))
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code, date, kind); err != nil {
		return false, fmt.Errorf("check attendance kind: %w", err)
	}
	return exists, nil
}

// Insert writes one record. The (person_code, date, kind) unique index
// turns a concurrent duplicate into ErrDuplicateRecord instead of a second
// row.
func (r *AttendanceRepository) Insert(ctx context.Context, population models.Population, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, person_code, date, time, kind, status, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (person_code, date, kind) DO NOTHING
RETURNING id, person_code, date, time, kind, status, note, created_at`, attendanceTable(population))
	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query, record.ID, record.PersonCode, record.Date, record.Time, record.Kind, record.Status, record.Note, record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDuplicateRecord
	}
	if err != nil {
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	return &stored, nil
}

// ReplaceDay removes every record for the person on the date and inserts
// the replacement set inside one transaction. The override path depends on
// this being all-or-nothing.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, population models.Population, code string, date time.Time, records []models.AttendanceRecord) error {
	table := attendanceTable(population)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin day replace: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE person_code = $1 AND date = $2`, table)
	if _, err := tx.ExecContext(ctx, deleteQuery, code, date); err != nil {
		return fmt.Errorf("clear day: %w", err)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (id, person_code, date, time, kind, status, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, table)
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, insertQuery, rec.ID, rec.PersonCode, rec.Date, rec.Time, rec.Kind, rec.Status, rec.Note, rec.CreatedAt); err != nil {
			return fmt.Errorf("insert day record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day replace: %w", err)
	}
	committed = true
	return nil
}

// ListDay returns every record for a date with the person's name, ordered
// by name then scan time.
func (r *AttendanceRepository) ListDay(ctx context.Context, population models.Population, date time.Time) ([]models.DayRecord, error) {
	classColumn := "NULL AS class_name"
	classJoin := ""
	if population == models.PopulationStudents {
		classColumn = "c.name AS class_name"
		classJoin = "LEFT JOIN classes c ON c.id = p.class_id"
	}
	query := fmt.Sprintf(`SELECT a.id, a.person_code, p.full_name AS person_name, %s, a.date, a.time, a.kind, a.status, a.note, a.created_at
FROM %s a
%s
%s
WHERE a.date = $1
ORDER BY p.full_name ASC, a.time ASC`, classColumn, attendanceTable(population), personTableJoin(population), classJoin)
	var records []models.DayRecord
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("list day attendance: %w", err)
	}
	return records, nil
}

// CountDistinctEntryStatus counts distinct persons with an entry of the
// given status inside [from, to]. Entry statuses live on "masuk" rows
// only; a same-day exit must not double-count.
func (r *AttendanceRepository) CountDistinctEntryStatus(ctx context.Context, population models.Population, from, to time.Time, status models.AttendanceStatus) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT person_code) FROM %s
WHERE date >= $1 AND date <= $2 AND kind = $3 AND status = $4`, attendanceTable(population))
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to, models.AttendanceKindEntry, status); err != nil {
		return 0, fmt.Errorf("count entry status: %w", err)
	}
	return count, nil
}

// CountDistinctStatus counts distinct persons carrying the status on any
// kind of row inside [from, to]; used for Sick/Leave which live on
// synthesized rows.
func (r *AttendanceRepository) CountDistinctStatus(ctx context.Context, population models.Population, from, to time.Time, status models.AttendanceStatus) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT person_code) FROM %s
WHERE date >= $1 AND date <= $2 AND status = $3`, attendanceTable(population))
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to, status); err != nil {
		return 0, fmt.Errorf("count status: %w", err)
	}
	return count, nil
}

// CountDistinctRecorded counts distinct persons with any counted activity
// inside [from, to]: an entry marked on-time or late, or a Sick/Leave row.
// Absent derivation subtracts this from the population size.
func (r *AttendanceRepository) CountDistinctRecorded(ctx context.Context, population models.Population, from, to time.Time) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT person_code) FROM %s
WHERE date >= $1 AND date <= $2
AND ((kind = $3 AND status = ANY($4)) OR status = ANY($5))`, attendanceTable(population))
	entryStatuses := pq.Array([]string{string(models.AttendanceStatusOnTime), string(models.AttendanceStatusLate)})
	otherStatuses := pq.Array([]string{string(models.AttendanceStatusSick), string(models.AttendanceStatusLeave)})
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to, models.AttendanceKindEntry, entryStatuses, otherStatuses); err != nil {
		return 0, fmt.Errorf("count recorded persons: %w", err)
	}
	return count, nil
}

// ExportRows returns flattened report lines with person names for a date
// range, ordered for the report body.
func (r *AttendanceRepository) ExportRows(ctx context.Context, population models.Population, from, to time.Time) ([]models.ExportRow, error) {
	query := fmt.Sprintf(`SELECT a.person_code, p.full_name AS person_name, a.date, a.time, a.kind, a.status, a.note
FROM %s a
%s
WHERE a.date >= $1 AND a.date <= $2
ORDER BY a.date ASC, p.full_name ASC, a.time ASC`, attendanceTable(population), personTableJoin(population))
	var rows []models.ExportRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("export attendance rows: %w", err)
	}
	return rows, nil
}
