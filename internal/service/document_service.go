package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/internal/models"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
	"github.com/investleasing/leasing-portal-api/pkg/storage"
)

type documentStore interface {
	ListContracts(ctx context.Context, userID string) ([]models.Contract, error)
	ListActs(ctx context.Context, userID string) ([]models.Act, error)
	ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error)
	ListOthers(ctx context.Context, userID string) ([]models.OtherDocument, error)
	GetContract(ctx context.Context, id string) (*models.Contract, error)
	GetAct(ctx context.Context, id string) (*models.Act, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	GetOther(ctx context.Context, id string) (*models.OtherDocument, error)
}

// Download carries the bytes and metadata for one stored document.
type Download struct {
	FileName string
	Reader   io.ReadCloser
}

// DocumentService exposes the synchronized documents to the portal.
type DocumentService struct {
	documents documentStore
	scratch   *storage.ScratchStore
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents documentStore, scratch *storage.ScratchStore, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{documents: documents, scratch: scratch, logger: logger}
}

// ListContracts returns the user's contract records.
func (s *DocumentService) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	contracts, err := s.documents.ListContracts(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contracts")
	}
	return contracts, nil
}

// ListActs returns the user's act records.
func (s *DocumentService) ListActs(ctx context.Context, userID string) ([]models.Act, error) {
	acts, err := s.documents.ListActs(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list acts")
	}
	return acts, nil
}

// ListInvoices returns the user's invoice records.
func (s *DocumentService) ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	invoices, err := s.documents.ListInvoices(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	return invoices, nil
}

// ListOthers returns the user's uncategorized document records.
func (s *DocumentService) ListOthers(ctx context.Context, userID string) ([]models.OtherDocument, error) {
	docs, err := s.documents.ListOthers(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list other documents")
	}
	return docs, nil
}

// OpenDownload locates the record for the given category and id, checks
// ownership and opens the stored file for streaming. The caller must close
// the reader.
func (s *DocumentService) OpenDownload(ctx context.Context, userID, category, id string) (*Download, error) {
	ownerID, filePath, err := s.lookup(ctx, category, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if ownerID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document belongs to another user")
	}

	file, err := s.scratch.Open(filePath)
	if err != nil {
		s.logger.Warn("stored document file missing", zap.String("path", filePath), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document file is not available")
	}

	return &Download{FileName: filepath.Base(filePath), Reader: file}, nil
}

func (s *DocumentService) lookup(ctx context.Context, category, id string) (ownerID, filePath string, err error) {
	switch category {
	case "contract":
		c, err := s.documents.GetContract(ctx, id)
		if err != nil {
			return "", "", err
		}
		return c.UserID, c.FilePath, nil
	case "act":
		a, err := s.documents.GetAct(ctx, id)
		if err != nil {
			return "", "", err
		}
		return a.UserID, a.FilePath, nil
	case "invoice":
		inv, err := s.documents.GetInvoice(ctx, id)
		if err != nil {
			return "", "", err
		}
		return inv.UserID, inv.FilePath, nil
	case "other":
		d, err := s.documents.GetOther(ctx, id)
		if err != nil {
			return "", "", err
		}
		return d.UserID, d.FilePath, nil
	default:
		return "", "", appErrors.Clone(appErrors.ErrValidation, "unknown document type")
	}
}
