package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/export"
	"github.com/noah-isme/absensi-qr-api/pkg/storage"
)

type exportAttendanceRepository interface {
	ExportRows(ctx context.Context, population models.Population, from, to time.Time) ([]models.ExportRow, error)
}

var exportColumns = []string{"Tanggal", "Kode", "Nama", "Jam", "Jenis", "Status", "Keterangan"}

// ExportService renders attendance ranges into downloadable report files.
type ExportService struct {
	attendance exportAttendanceRepository
	csv        *export.CSVExporter
	xlsx       *export.XLSXExporter
	pdf        *export.PDFExporter
	store      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(attendance exportAttendanceRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		xlsx:       export.NewXLSXExporter(),
		pdf:        export.NewPDFExporter(),
		store:      store,
		signer:     signer,
		logger:     logger,
	}
}

// GenerateReport renders the range into the requested format, stores the
// file and returns a signed download token.
func (s *ExportService) GenerateReport(ctx context.Context, population models.Population, from, to time.Time, format string) (*dto.ExportResult, error) {
	if !population.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown population")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end precedes start")
	}

	rows, err := s.attendance.ExportRows(ctx, population, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export rows")
	}

	table := export.Table{
		Title:   fmt.Sprintf("Laporan Absensi %s %s - %s", population, from.Format("02-01-2006"), to.Format("02-01-2006")),
		Columns: exportColumns,
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		note := ""
		if row.Note != nil {
			note = *row.Note
		}
		table.Rows = append(table.Rows, []string{
			row.Date.Format("2006-01-02"),
			row.PersonCode,
			row.PersonName,
			row.Time.String(),
			string(row.Kind),
			string(row.Status),
			note,
		})
	}

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(table)
	case "xlsx":
		payload, err = s.xlsx.Render(table, "Absensi")
	case "pdf":
		payload, err = s.pdf.Render(table)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, xlsx or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	jobID := uuid.NewString()
	fileName := fmt.Sprintf("absensi_%s_%s_%s_%s.%s", population, from.Format("20060102"), to.Format("20060102"), jobID[:8], format)
	if _, err := s.store.Save(fileName, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(jobID, fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	s.logger.Info("report generated",
		zap.String("file", fileName), zap.String("format", format), zap.Int("rows", len(rows)))

	return &dto.ExportResult{
		FileName:      fileName,
		Format:        format,
		RowCount:      len(rows),
		DownloadToken: token,
		ExpiresAt:     expiresAt,
	}, nil
}

// OpenDownload validates a signed token and opens the referenced file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report file not found")
	}
	return file, relPath, nil
}

// CleanupExpired removes report files older than the retention window.
func (s *ExportService) CleanupExpired(retention time.Duration) {
	removed, err := s.store.CleanupOlderThan(retention)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", removed))
	}
}
