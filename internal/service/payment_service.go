package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/internal/models"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
	"github.com/investleasing/leasing-portal-api/pkg/export"
)

type scheduleStore interface {
	ListByUserID(ctx context.Context, userID string) ([]models.PaymentSchedule, error)
	ListByContract(ctx context.Context, userID, contractNumber string) ([]models.PaymentSchedule, error)
}

// ExportResult carries rendered export bytes with HTTP metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PaymentService exposes payment schedules and their exports.
type PaymentService struct {
	schedules scheduleStore
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	enabled   bool
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(schedules scheduleStore, csv *export.CSVExporter, pdf *export.PDFExporter, exportsEnabled bool, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{schedules: schedules, csv: csv, pdf: pdf, enabled: exportsEnabled, logger: logger}
}

// List returns every schedule row for the user.
func (s *PaymentService) List(ctx context.Context, userID string) ([]models.PaymentSchedule, error) {
	rows, err := s.schedules.ListByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment schedule")
	}
	return rows, nil
}

// ListByContract returns the schedule for one contract.
func (s *PaymentService) ListByContract(ctx context.Context, userID, contractNumber string) ([]models.PaymentSchedule, error) {
	rows, err := s.schedules.ListByContract(ctx, userID, contractNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contract payment schedule")
	}
	return rows, nil
}

// Export renders the user's schedule as CSV or PDF.
func (s *PaymentService) Export(ctx context.Context, userID, format string) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	rows, err := s.schedules.ListByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment schedule")
	}

	dataset := export.Dataset{
		Headers: []string{"Contract", "Payment", "Date", "Amount", "Source"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Contract": row.ContractNumber,
			"Payment":  fmt.Sprintf("%d", row.PaymentNumber),
			"Date":     row.PaymentDate.Format("2006-01-02"),
			"Amount":   fmt.Sprintf("%.2f", row.Amount),
			"Source":   row.Source,
		})
	}

	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{FileName: "payment-schedule.csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Payment schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{FileName: "payment-schedule.pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
