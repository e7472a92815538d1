package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/storage"
)

type mockExportRepo struct {
	rows []models.ExportRow
}

func (m *mockExportRepo) ExportRows(_ context.Context, _ models.Population, _, _ time.Time) ([]models.ExportRow, error) {
	return m.rows, nil
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	note := "sakit demam"
	repo := &mockExportRepo{rows: []models.ExportRow{
		{
			PersonCode: "12345",
			PersonName: "Budi Santoso",
			Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Time:       models.TimeOfDay(7 * 3600),
			Kind:       models.AttendanceKindEntry,
			Status:     models.AttendanceStatusOnTime,
		},
		{
			PersonCode: "67890",
			PersonName: "Ani Lestari",
			Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Kind:       models.AttendanceKindOther,
			Status:     models.AttendanceStatusSick,
			Note:       &note,
		},
	}}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewExportService(repo, store, signer, zap.NewNop())
}

func exportRange() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestExportGenerateCSVAndDownload(t *testing.T) {
	svc := newExportFixture(t)
	from, to := exportRange()

	result, err := svc.GenerateReport(context.Background(), models.PopulationStudents, from, to, "csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)
	assert.Contains(t, result.FileName, "absensi_students_20260301_20260331")
	assert.NotEmpty(t, result.DownloadToken)

	file, name, err := svc.OpenDownload(result.DownloadToken)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.FileName, name)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	body := string(content)
	assert.True(t, strings.HasPrefix(body, "Tanggal,Kode,Nama,Jam,Jenis,Status,Keterangan"))
	assert.Contains(t, body, "Budi Santoso")
	assert.Contains(t, body, "sakit demam")
}

func TestExportGenerateXLSXAndPDF(t *testing.T) {
	svc := newExportFixture(t)
	from, to := exportRange()

	for _, format := range []string{"xlsx", "pdf"} {
		result, err := svc.GenerateReport(context.Background(), models.PopulationEmployees, from, to, format)
		require.NoError(t, err, format)
		assert.Equal(t, format, result.Format)

		file, _, err := svc.OpenDownload(result.DownloadToken)
		require.NoError(t, err, format)
		file.Close()
	}
}

func TestExportGenerateValidation(t *testing.T) {
	svc := newExportFixture(t)
	from, to := exportRange()

	_, err := svc.GenerateReport(context.Background(), models.PopulationStudents, from, to, "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.GenerateReport(context.Background(), models.PopulationStudents, to, from, "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.GenerateReport(context.Background(), models.Population("robots"), from, to, "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportDownloadRejectsTamperedToken(t *testing.T) {
	svc := newExportFixture(t)
	from, to := exportRange()

	result, err := svc.GenerateReport(context.Background(), models.PopulationStudents, from, to, "csv")
	require.NoError(t, err)

	_, _, err = svc.OpenDownload(result.DownloadToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
