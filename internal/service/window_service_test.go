package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
)

type mockWindowRepo struct {
	singletons map[models.WindowCategory]*models.TimeWindow
	shifts     map[string]*models.TimeWindow
	upserted   []*models.TimeWindow
	resets     []models.WindowCategory
	deleted    []string
}

func (m *mockWindowRepo) Singleton(_ context.Context, category models.WindowCategory) (*models.TimeWindow, error) {
	if w, ok := m.singletons[category]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWindowRepo) UpsertSingleton(_ context.Context, category models.WindowCategory, window *models.TimeWindow) error {
	if m.singletons == nil {
		m.singletons = make(map[models.WindowCategory]*models.TimeWindow)
	}
	m.singletons[category] = window
	m.upserted = append(m.upserted, window)
	return nil
}

func (m *mockWindowRepo) ResetSingleton(_ context.Context, category models.WindowCategory) error {
	delete(m.singletons, category)
	m.resets = append(m.resets, category)
	return nil
}

func (m *mockWindowRepo) SecurityShift(_ context.Context, shift string) (*models.TimeWindow, error) {
	if w, ok := m.shifts[shift]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWindowRepo) ListSecurityShifts(_ context.Context) ([]models.TimeWindow, error) {
	var out []models.TimeWindow
	for _, w := range m.shifts {
		out = append(out, *w)
	}
	return out, nil
}

func (m *mockWindowRepo) UpsertSecurityShift(_ context.Context, window *models.TimeWindow) error {
	if m.shifts == nil {
		m.shifts = make(map[string]*models.TimeWindow)
	}
	m.shifts[window.Shift] = window
	m.upserted = append(m.upserted, window)
	return nil
}

func (m *mockWindowRepo) DeleteSecurityShift(_ context.Context, shift string) error {
	delete(m.shifts, shift)
	m.deleted = append(m.deleted, shift)
	return nil
}

type mockRosterShiftRepo struct {
	shifts map[string]string
}

func (m *mockRosterShiftRepo) ShiftOn(_ context.Context, employeeID string, _ time.Time) (string, error) {
	if shift, ok := m.shifts[employeeID]; ok {
		return shift, nil
	}
	return "", sql.ErrNoRows
}

func testDate() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
}

func TestWindowResolveStudentAndStaff(t *testing.T) {
	studentWindow := schoolWindow(t)
	staffWindow := schoolWindow(t)
	staffWindow.Category = models.WindowCategoryStaff
	repo := &mockWindowRepo{singletons: map[models.WindowCategory]*models.TimeWindow{
		models.WindowCategoryStudent: studentWindow,
		models.WindowCategoryStaff:   staffWindow,
	}}
	svc := NewWindowService(repo, &mockRosterShiftRepo{}, nil, zap.NewNop())

	got, err := svc.Resolve(context.Background(), models.Person{Category: models.PersonCategoryStudent}, testDate())
	require.NoError(t, err)
	assert.Same(t, studentWindow, got)

	got, err = svc.Resolve(context.Background(), models.Person{Category: models.PersonCategoryTeacher}, testDate())
	require.NoError(t, err)
	assert.Same(t, staffWindow, got)

	got, err = svc.Resolve(context.Background(), models.Person{Category: models.PersonCategoryStaff}, testDate())
	require.NoError(t, err)
	assert.Same(t, staffWindow, got)
}

func TestWindowResolveUnconfiguredSingleton(t *testing.T) {
	svc := NewWindowService(&mockWindowRepo{}, &mockRosterShiftRepo{}, nil, zap.NewNop())

	_, err := svc.Resolve(context.Background(), models.Person{Category: models.PersonCategoryStudent}, testDate())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWindowNotConfigured.Code, appErrors.FromError(err).Code)
}

func TestWindowResolveSecurityViaRoster(t *testing.T) {
	shiftWindow := schoolWindow(t)
	shiftWindow.Category = models.WindowCategorySecurity
	shiftWindow.Shift = "shift2"
	repo := &mockWindowRepo{shifts: map[string]*models.TimeWindow{"shift2": shiftWindow}}
	roster := &mockRosterShiftRepo{shifts: map[string]string{"em-2": "shift2"}}
	svc := NewWindowService(repo, roster, nil, zap.NewNop())

	person := models.Person{ID: "em-2", Category: models.PersonCategorySecurity}
	got, err := svc.Resolve(context.Background(), person, testDate())
	require.NoError(t, err)
	assert.Same(t, shiftWindow, got)
}

func TestWindowResolveSecurityRefusals(t *testing.T) {
	repo := &mockWindowRepo{}
	roster := &mockRosterShiftRepo{shifts: map[string]string{"off-guy": "Off", "no-window": "shift3"}}
	svc := NewWindowService(repo, roster, nil, zap.NewNop())

	cases := []struct {
		name string
		id   string
		code string
	}{
		{"no roster row", "unknown", appErrors.ErrShiftUnscheduled.Code},
		{"scheduled off", "off-guy", appErrors.ErrShiftUnscheduled.Code},
		{"shift without window", "no-window", appErrors.ErrWindowNotConfigured.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			person := models.Person{ID: tc.id, Category: models.PersonCategorySecurity}
			_, err := svc.Resolve(context.Background(), person, testDate())
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestWindowUpdateValidatesOrdering(t *testing.T) {
	svc := NewWindowService(&mockWindowRepo{}, &mockRosterShiftRepo{}, nil, zap.NewNop())

	bad := schoolWindow(t)
	bad.EntryClose = mustClock(t, "05:00")
	_, err := svc.Update(context.Background(), models.WindowCategoryStudent, bad)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	good := schoolWindow(t)
	updated, err := svc.Update(context.Background(), models.WindowCategoryStudent, good)
	require.NoError(t, err)
	assert.Equal(t, models.WindowCategoryStudent, updated.Category)
}

func TestWindowSingletonOpsRejectSecurityCategory(t *testing.T) {
	svc := NewWindowService(&mockWindowRepo{}, &mockRosterShiftRepo{}, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), models.WindowCategorySecurity)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), models.WindowCategorySecurity, schoolWindow(t))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.Reset(context.Background(), models.WindowCategorySecurity)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWindowUpdateSecurityWindow(t *testing.T) {
	repo := &mockWindowRepo{}
	svc := NewWindowService(repo, &mockRosterShiftRepo{}, nil, zap.NewNop())

	window := schoolWindow(t)
	window.Shift = "shift5"
	_, err := svc.UpdateSecurityWindow(context.Background(), window)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	window.Shift = " shift1 "
	updated, err := svc.UpdateSecurityWindow(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, "shift1", updated.Shift)
	assert.Equal(t, models.WindowCategorySecurity, updated.Category)
	assert.Contains(t, repo.shifts, "shift1")
}
