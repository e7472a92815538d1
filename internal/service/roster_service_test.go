package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type mockRosterRepo struct {
	// existing rows keyed "employee:2006-01-02"
	rows         map[string]models.ShiftAssignment
	replacedWith []models.ShiftAssignment
	replaceCalls int
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{rows: make(map[string]models.ShiftAssignment)}
}

func rosterKey(employeeID string, date time.Time) string {
	return employeeID + ":" + date.Format("2006-01-02")
}

func (m *mockRosterRepo) ListRange(_ context.Context, from, to time.Time) ([]models.ShiftAssignment, error) {
	var out []models.ShiftAssignment
	for _, a := range m.rows {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRosterRepo) ReplaceRange(_ context.Context, from, to time.Time, employeeIDs []string, assignments []models.ShiftAssignment) error {
	m.replaceCalls++
	m.replacedWith = assignments
	ids := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		ids[id] = true
	}
	for key, a := range m.rows {
		if ids[a.EmployeeID] && !a.Date.Before(from) && !a.Date.After(to) {
			delete(m.rows, key)
		}
	}
	for _, a := range assignments {
		m.rows[rosterKey(a.EmployeeID, a.Date)] = a
	}
	return nil
}

func (m *mockRosterRepo) InsertMissing(_ context.Context, assignments []models.ShiftAssignment) (int, error) {
	inserted := 0
	for _, a := range assignments {
		key := rosterKey(a.EmployeeID, a.Date)
		if _, exists := m.rows[key]; exists {
			continue
		}
		m.rows[key] = a
		inserted++
	}
	return inserted, nil
}

type mockSecurityEmployees struct {
	employees []models.Employee
}

func (m *mockSecurityEmployees) ListSecurity(_ context.Context) ([]models.Employee, error) {
	return m.employees, nil
}

func TestRosterMonthView(t *testing.T) {
	repo := newMockRosterRepo()
	repo.rows[rosterKey("em-2", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))] = models.ShiftAssignment{
		EmployeeID: "em-2",
		Date:       time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Shift:      "shift1",
	}
	employees := &mockSecurityEmployees{employees: []models.Employee{
		{ID: "em-2", EmployeeNo: "SEC01", FullName: "Joko", Role: models.EmployeeRoleSecurity},
	}}
	svc := NewRosterService(repo, employees, zap.NewNop())

	view, err := svc.MonthView(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 31, view.Days)
	require.Len(t, view.Employees, 1)
	assert.Equal(t, "shift1", view.Roster["em-2"][5])
}

func TestRosterSaveMonthValidation(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, &mockSecurityEmployees{}, zap.NewNop())

	err := svc.SaveMonth(context.Background(), 2026, 2, models.MonthRoster{
		"em-2": {30: "shift1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.SaveMonth(context.Background(), 2026, 3, models.MonthRoster{
		"em-2": {5: "night"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.replaceCalls)
}

func TestRosterSaveMonthSkipsEmptyCells(t *testing.T) {
	repo := newMockRosterRepo()
	svc := NewRosterService(repo, &mockSecurityEmployees{}, zap.NewNop())

	err := svc.SaveMonth(context.Background(), 2026, 3, models.MonthRoster{
		"em-2": {1: "shift1", 2: "", 3: "Off"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.replaceCalls)
	assert.Len(t, repo.replacedWith, 2)
}

func TestRosterCopyPreviousMonth(t *testing.T) {
	repo := newMockRosterRepo()
	feb5 := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	feb10 := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo.rows[rosterKey("em-2", feb5)] = models.ShiftAssignment{EmployeeID: "em-2", Date: feb5, Shift: "shift1"}
	repo.rows[rosterKey("em-2", feb10)] = models.ShiftAssignment{EmployeeID: "em-2", Date: feb10, Shift: "shift2"}
	// March 10 already set by hand; the copy must not overwrite it.
	mar10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.rows[rosterKey("em-2", mar10)] = models.ShiftAssignment{EmployeeID: "em-2", Date: mar10, Shift: "shift4"}

	svc := NewRosterService(repo, &mockSecurityEmployees{}, zap.NewNop())

	copied, err := svc.CopyPreviousMonth(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	assert.Equal(t, "shift1", repo.rows[rosterKey("em-2", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))].Shift)
	assert.Equal(t, "shift4", repo.rows[rosterKey("em-2", mar10)].Shift)

	// Running the copy again adds nothing.
	copied, err = svc.CopyPreviousMonth(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Zero(t, copied)
}

func TestRosterCopySkipsOffMarkers(t *testing.T) {
	repo := newMockRosterRepo()
	feb5 := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	feb6 := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
	repo.rows[rosterKey("em-2", feb5)] = models.ShiftAssignment{EmployeeID: "em-2", Date: feb5, Shift: "Off"}
	repo.rows[rosterKey("em-2", feb6)] = models.ShiftAssignment{EmployeeID: "em-2", Date: feb6, Shift: "shift2"}
	svc := NewRosterService(repo, &mockSecurityEmployees{}, zap.NewNop())

	copied, err := svc.CopyPreviousMonth(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	_, exists := repo.rows[rosterKey("em-2", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))]
	assert.False(t, exists)
	assert.Equal(t, "shift2", repo.rows[rosterKey("em-2", time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))].Shift)
}

func TestRosterCopySkipsDaysPastTargetEnd(t *testing.T) {
	repo := newMockRosterRepo()
	// January 30 and 31 have no slot in February 2027.
	for _, day := range []int{28, 30, 31} {
		date := time.Date(2027, 1, day, 0, 0, 0, 0, time.UTC)
		repo.rows[rosterKey("em-2", date)] = models.ShiftAssignment{EmployeeID: "em-2", Date: date, Shift: "shift1"}
	}
	svc := NewRosterService(repo, &mockSecurityEmployees{}, zap.NewNop())

	copied, err := svc.CopyPreviousMonth(context.Background(), 2027, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
	_, exists := repo.rows[rosterKey("em-2", time.Date(2027, 3, 2, 0, 0, 0, 0, time.UTC))]
	assert.False(t, exists)
}
