package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-qr-api/internal/models"
)

// EmployeeRepository provides database access for employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByEmployeeNo returns an employee by the number carried in the QR
// payload.
func (r *EmployeeRepository) FindByEmployeeNo(ctx context.Context, employeeNo string) (*models.Employee, error) {
	const query = `SELECT id, employee_no, full_name, role, default_shift, created_at, updated_at FROM employees WHERE employee_no = $1 LIMIT 1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, employeeNo); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by number: %w", err)
	}
	return &employee, nil
}

// FindByID returns an employee by identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	const query = `SELECT id, employee_no, full_name, role, default_shift, created_at, updated_at FROM employees WHERE id = $1 LIMIT 1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by id: %w", err)
	}
	return &employee, nil
}

// List returns employees filtered by role and name search, with a total
// count for pagination.
func (r *EmployeeRepository) List(ctx context.Context, role models.EmployeeRole, search string, page, pageSize int) ([]models.Employee, int, error) {
	baseQuery := `FROM employees WHERE 1=1`
	var args []interface{}

	if role != "" {
		args = append(args, role)
		baseQuery += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		baseQuery += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR employee_no LIKE $%d)", len(args), len(args))
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT id, employee_no, full_name, role, default_shift, created_at, updated_at %s ORDER BY full_name ASC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// ListSecurity returns every security employee ordered by name; the roster
// editor renders the month grid from this set.
func (r *EmployeeRepository) ListSecurity(ctx context.Context) ([]models.Employee, error) {
	const query = `SELECT id, employee_no, full_name, role, default_shift, created_at, updated_at FROM employees WHERE role = $1 ORDER BY full_name ASC`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, models.EmployeeRoleSecurity); err != nil {
		return nil, fmt.Errorf("list security employees: %w", err)
	}
	return employees, nil
}

// Count returns the size of the employee population.
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM employees`); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (id, employee_no, full_name, role, default_shift, created_at, updated_at) VALUES (:id, :employee_no, :full_name, :role, :default_shift, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update updates mutable fields of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET employee_no = :employee_no, full_name = :full_name, role = :role, default_shift = :default_shift, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an employee.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
