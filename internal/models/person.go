package models

import "time"

// EmployeeRole enumerates the staff categories carried by employees.
type EmployeeRole string

const (
	EmployeeRoleTeacher  EmployeeRole = "guru"
	EmployeeRoleStaff    EmployeeRole = "staf"
	EmployeeRoleSecurity EmployeeRole = "keamanan"
)

// Valid returns true for a known employee role.
func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeRoleTeacher, EmployeeRoleStaff, EmployeeRoleSecurity:
		return true
	default:
		return false
	}
}

// Class groups students for the administration views.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Student is a scannable person in the student population. GuardianPhone
// receives the WhatsApp notification after a successful scan.
type Student struct {
	ID            string    `db:"id" json:"id"`
	NIS           string    `db:"nis" json:"nis"`
	FullName      string    `db:"full_name" json:"full_name"`
	ClassID       string    `db:"class_id" json:"class_id"`
	ClassName     *string   `db:"class_name" json:"class_name,omitempty"`
	GuardianPhone *string   `db:"guardian_phone" json:"guardian_phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// QRPayload renders the code carried by the student's QR card.
func (s *Student) QRPayload() string { return "S" + s.NIS }

// Employee is a scannable person in the employee population. DefaultShift
// is only a roster-editing default for security staff; the active shift on
// a date always comes from the roster.
type Employee struct {
	ID           string       `db:"id" json:"id"`
	EmployeeNo   string       `db:"employee_no" json:"employee_no"`
	FullName     string       `db:"full_name" json:"full_name"`
	Role         EmployeeRole `db:"role" json:"role"`
	DefaultShift *string      `db:"default_shift" json:"default_shift,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// QRPayload renders the code carried by the employee's QR card.
func (e *Employee) QRPayload() string { return "P" + e.EmployeeNo }

// PersonCategory is the window-resolution category of a scanned person.
type PersonCategory string

const (
	PersonCategoryStudent  PersonCategory = "student"
	PersonCategoryTeacher  PersonCategory = "teacher"
	PersonCategoryStaff    PersonCategory = "staff"
	PersonCategorySecurity PersonCategory = "security"
)

// Person is the evaluator's view of a scanned identity, flattened across
// the student/employee variants.
type Person struct {
	ID            string
	Code          string
	Name          string
	Category      PersonCategory
	Population    Population
	GuardianPhone *string
}

// PersonFromStudent adapts a student row for evaluation.
func PersonFromStudent(s *Student) Person {
	return Person{
		ID:            s.ID,
		Code:          s.NIS,
		Name:          s.FullName,
		Category:      PersonCategoryStudent,
		Population:    PopulationStudents,
		GuardianPhone: s.GuardianPhone,
	}
}

// PersonFromEmployee adapts an employee row for evaluation.
func PersonFromEmployee(e *Employee) Person {
	category := PersonCategoryStaff
	switch e.Role {
	case EmployeeRoleTeacher:
		category = PersonCategoryTeacher
	case EmployeeRoleSecurity:
		category = PersonCategorySecurity
	}
	return Person{
		ID:         e.ID,
		Code:       e.EmployeeNo,
		Name:       e.FullName,
		Category:   category,
		Population: PopulationEmployees,
	}
}
