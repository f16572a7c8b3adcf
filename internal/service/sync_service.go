package service

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/internal/classify"
	"github.com/investleasing/leasing-portal-api/internal/models"
	"github.com/investleasing/leasing-portal-api/internal/registry"
	"github.com/investleasing/leasing-portal-api/internal/remote"
	"github.com/investleasing/leasing-portal-api/pkg/config"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
	"github.com/investleasing/leasing-portal-api/pkg/storage"
)

type syncDocumentStore interface {
	UpsertContract(ctx context.Context, c *models.Contract) error
	UpsertAct(ctx context.Context, a *models.Act) error
	UpsertInvoice(ctx context.Context, inv *models.Invoice) error
	UpsertOther(ctx context.Context, d *models.OtherDocument) error
	ListContracts(ctx context.Context, userID string) ([]models.Contract, error)
}

type syncScheduleStore interface {
	Upsert(ctx context.Context, p *models.PaymentSchedule) error
	CountByContract(ctx context.Context, userID, contractNumber string) (int, error)
}

type syncGuard interface {
	AcquireSyncLock(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	ReleaseSyncLock(ctx context.Context, userID string)
}

type registryApplier interface {
	ApplyRegistry(ctx context.Context, identity models.Identity, reg *registry.Registry) error
}

type registrySource interface {
	Fetch(ctx context.Context) (*registry.Registry, error)
	FetchWith(ctx context.Context, conn remote.Conn) (*registry.Registry, error)
}

type syncMetrics interface {
	ObserveSyncRun(outcome string, duration time.Duration)
	AddSyncedDocuments(n int)
	RecordDownloadFailure()
	RecordPersistFailure()
}

// SyncService walks the customer's remote folder tree, downloads every
// document, classifies it and persists the matching record. One run per
// user at a time; a redis guard rejects overlapping runs.
type SyncService struct {
	users     profileUserStore
	documents syncDocumentStore
	schedules syncScheduleStore
	guard     syncGuard
	profile   registryApplier
	loader    registrySource
	dialer    remote.Dialer
	scratch   *storage.ScratchStore
	metrics   syncMetrics
	logger    *zap.Logger
	cfg       config.SyncConfig

	now func() time.Time
}

// NewSyncService constructs a SyncService.
func NewSyncService(users profileUserStore, documents syncDocumentStore, schedules syncScheduleStore, guard syncGuard, profile registryApplier, loader registrySource, dialer remote.Dialer, scratch *storage.ScratchStore, metrics syncMetrics, logger *zap.Logger, cfg config.SyncConfig) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		users:     users,
		documents: documents,
		schedules: schedules,
		guard:     guard,
		profile:   profile,
		loader:    loader,
		dialer:    dialer,
		scratch:   scratch,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sync runs one synchronization pass for the user. Identity problems are
// detected before any network call. A user without a tax id still gets the
// registry side-channel but no document traversal: remote document paths
// are keyed by tax id, email alone is not enough.
func (s *SyncService) Sync(ctx context.Context, userID string) (*models.SyncResult, error) {
	identity, err := s.resolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}
	if identity.Empty() {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}

	if s.guard != nil {
		ok, err := s.guard.AcquireSyncLock(ctx, userID, s.cfg.GuardTTL)
		if err != nil {
			s.logger.Warn("sync guard unavailable, proceeding without it", zap.Error(err))
		} else if !ok {
			return nil, appErrors.Clone(appErrors.ErrSyncInProgress, "")
		} else {
			defer s.guard.ReleaseSyncLock(ctx, userID)
		}
	}

	start := s.now()

	if identity.INN == "" {
		// Registry matching works by email alone; documents do not.
		s.applyRegistryBestEffort(ctx, identity, nil)
		s.observe("no_tax_id", start)
		return &models.SyncResult{Documents: []models.DocumentRecord{}}, nil
	}

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		s.observe("connect_failed", start)
		return nil, err
	}
	defer conn.Close() //nolint:errcheck

	s.applyRegistryBestEffort(ctx, identity, conn)

	customerRoot := path.Join(s.cfg.DocsRoot, identity.INN)
	contractDirs, err := conn.List(ctx, customerRoot)
	if err != nil {
		if remote.IsNotExist(err) {
			s.observe("folder_not_found", start)
			return nil, appErrors.Clone(appErrors.ErrCustomerFolderNotFound, "")
		}
		s.observe("list_failed", start)
		return nil, appErrors.FromError(err)
	}

	result := &models.SyncResult{Documents: []models.DocumentRecord{}}
	for _, contractDir := range contractDirs {
		if !contractDir.Dir {
			continue
		}
		s.syncContractFolder(ctx, conn, identity.UserID, customerRoot, contractDir.Name, result)
	}

	s.backfillSchedules(ctx, identity.UserID)

	result.Count = len(result.Documents)
	if s.metrics != nil {
		s.metrics.AddSyncedDocuments(result.Count)
	}
	s.observe("success", start)
	s.logger.Info("synchronization finished",
		zap.String("user_id", userID),
		zap.Int("count", result.Count),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *SyncService) resolveIdentity(ctx context.Context, userID string) (models.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	}
	identity := models.Identity{UserID: user.ID, Email: user.Email}
	if user.INN != nil {
		identity.INN = *user.INN
	}
	return identity, nil
}

// applyRegistryBestEffort runs the registry side-channel. Nothing here is
// fatal to document sync. With a nil conn the loader dials on its own.
func (s *SyncService) applyRegistryBestEffort(ctx context.Context, identity models.Identity, conn remote.Conn) {
	if s.loader == nil || s.profile == nil {
		return
	}

	var reg *registry.Registry
	var err error
	if conn != nil {
		reg, err = s.loader.FetchWith(ctx, conn)
	} else {
		reg, err = s.loader.Fetch(ctx)
	}
	if err != nil {
		s.logger.Warn("registry unavailable during sync", zap.Error(err))
		return
	}

	if err := s.profile.ApplyRegistry(ctx, identity, reg); err != nil {
		s.logger.Warn("failed to apply registry data", zap.Error(err))
	}
}

// syncContractFolder processes one contract-number directory. Listing
// failures skip the folder; per-file failures skip the file. Neither stops
// the run.
func (s *SyncService) syncContractFolder(ctx context.Context, conn remote.Conn, userID, customerRoot, contractNumber string, result *models.SyncResult) {
	contractPath := path.Join(customerRoot, contractNumber)
	entries, err := conn.List(ctx, contractPath)
	if err != nil {
		s.logger.Warn("failed to list contract folder", zap.String("path", contractPath), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.Dir {
			s.syncTypeFolder(ctx, conn, userID, contractPath, contractNumber, entry.Name, result)
			continue
		}
		s.syncFile(ctx, conn, userID, contractNumber, "", path.Join(contractPath, entry.Name), entry, result)
	}
}

func (s *SyncService) syncTypeFolder(ctx context.Context, conn remote.Conn, userID, contractPath, contractNumber, folderName string, result *models.SyncResult) {
	folderPath := path.Join(contractPath, folderName)
	entries, err := conn.List(ctx, folderPath)
	if err != nil {
		s.logger.Warn("failed to list type folder", zap.String("path", folderPath), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.Dir {
			continue
		}
		s.syncFile(ctx, conn, userID, contractNumber, folderName, path.Join(folderPath, entry.Name), entry, result)
	}
}

// syncFile downloads one remote file into the scratch tree and persists the
// category-specific record. Failures bump Skipped and the matching counter.
func (s *SyncService) syncFile(ctx context.Context, conn remote.Conn, userID, contractNumber, folderName, remotePath string, entry remote.Entry, result *models.SyncResult) {
	category := classify.Categorize(entry.Name, folderName)
	localPath := s.scratch.DocumentPath(category.LocalDir(), contractNumber, entry.Name)

	file, err := s.scratch.Create(localPath)
	if err != nil {
		s.recordDownloadFailure(remotePath, err, result)
		return
	}

	downloadErr := conn.Download(ctx, remotePath, file)
	closeErr := file.Close()
	if downloadErr != nil || closeErr != nil {
		if downloadErr == nil {
			downloadErr = closeErr
		}
		_ = s.scratch.Remove(localPath)
		s.recordDownloadFailure(remotePath, downloadErr, result)
		return
	}

	record, err := s.persistDocument(ctx, userID, contractNumber, folderName, entry, localPath, category)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordPersistFailure()
		}
		s.logger.Warn("failed to persist document", zap.String("path", remotePath), zap.Error(err))
		result.Skipped++
		return
	}

	result.Documents = append(result.Documents, record)
}

func (s *SyncService) recordDownloadFailure(remotePath string, err error, result *models.SyncResult) {
	if s.metrics != nil {
		s.metrics.RecordDownloadFailure()
	}
	s.logger.Warn("failed to download document", zap.String("path", remotePath), zap.Error(err))
	result.Skipped++
}

// persistDocument builds and stores the category-specific record. Amounts
// are placeholder zeros: the remote tree carries no amount data.
func (s *SyncService) persistDocument(ctx context.Context, userID, contractNumber, folderName string, entry remote.Entry, localPath string, category classify.Category) (models.DocumentRecord, error) {
	now := s.now().UTC()
	display := classify.DisplayName(folderName, entry.Name)

	switch category {
	case classify.CategoryContract:
		contract := &models.Contract{
			UserID:   userID,
			Number:   contractNumber,
			Date:     now,
			Type:     display,
			Status:   "active",
			FilePath: localPath,
		}
		if err := s.documents.UpsertContract(ctx, contract); err != nil {
			return models.DocumentRecord{}, err
		}
		return models.DocumentRecord{ID: contract.ID, Category: string(category), Number: contract.Number, Name: display, FilePath: localPath}, nil

	case classify.CategoryAct:
		// Acts display the contract number. Several acts under one
		// contract share it and stay distinct by id.
		act := &models.Act{
			UserID:         userID,
			Number:         contractNumber,
			Date:           now,
			Type:           display,
			ContractNumber: contractNumber,
			FilePath:       localPath,
		}
		if err := s.documents.UpsertAct(ctx, act); err != nil {
			return models.DocumentRecord{}, err
		}
		return models.DocumentRecord{ID: act.ID, Category: string(category), Number: act.Number, Name: display, FilePath: localPath}, nil

	case classify.CategoryInvoice:
		invoice := &models.Invoice{
			UserID:         userID,
			Number:         invoiceNumber(contractNumber, now),
			Date:           now,
			ContractNumber: contractNumber,
			Status:         "issued",
			FilePath:       localPath,
		}
		if err := s.documents.UpsertInvoice(ctx, invoice); err != nil {
			return models.DocumentRecord{}, err
		}
		return models.DocumentRecord{ID: invoice.ID, Category: string(category), Number: invoice.Number, Name: display, FilePath: localPath}, nil

	default:
		doc := &models.OtherDocument{
			UserID:      userID,
			Name:        display,
			Date:        now,
			Description: entry.Name,
			FileSize:    entry.Size,
			FileType:    fileExtension(entry.Name),
			FilePath:    localPath,
		}
		if err := s.documents.UpsertOther(ctx, doc); err != nil {
			return models.DocumentRecord{}, err
		}
		return models.DocumentRecord{ID: doc.ID, Category: string(category), Name: doc.Name, FilePath: localPath}, nil
	}
}

// backfillSchedules creates a placeholder monthly schedule for every
// contract that still has no payment rows, so the portal never shows an
// empty schedule. Registry-sourced rows always take precedence later.
func (s *SyncService) backfillSchedules(ctx context.Context, userID string) {
	contracts, err := s.documents.ListContracts(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list contracts for schedule backfill", zap.Error(err))
		return
	}

	months := s.cfg.BackfillMonths
	if months <= 0 {
		months = 12
	}

	seen := make(map[string]bool, len(contracts))
	for _, contract := range contracts {
		if seen[contract.Number] {
			continue
		}
		seen[contract.Number] = true

		count, err := s.schedules.CountByContract(ctx, userID, contract.Number)
		if err != nil {
			s.logger.Warn("failed to count payment schedule", zap.String("contract", contract.Number), zap.Error(err))
			continue
		}
		if count > 0 {
			continue
		}

		amount := 0.0
		if contract.Amount > 0 {
			amount = math.Round(contract.Amount / float64(months))
		}

		base := s.now().UTC()
		for i := 1; i <= months; i++ {
			row := &models.PaymentSchedule{
				UserID:         userID,
				ContractNumber: contract.Number,
				PaymentNumber:  i,
				PaymentDate:    base.AddDate(0, i, 0),
				Amount:         amount,
				Source:         models.ScheduleSourceSynthetic,
			}
			if err := s.schedules.Upsert(ctx, row); err != nil {
				s.logger.Warn("failed to store synthetic payment",
					zap.String("contract", contract.Number),
					zap.Int("payment_number", i),
					zap.Error(err))
			}
		}
	}
}

func (s *SyncService) observe(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSyncRun(outcome, s.now().Sub(start))
}

func invoiceNumber(contractNumber string, now time.Time) string {
	return fmt.Sprintf("%s-INV-%d", contractNumber, now.Unix())
}

func fileExtension(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return strings.ToLower(ext)
}
