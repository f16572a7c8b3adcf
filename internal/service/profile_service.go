package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/internal/models"
	"github.com/investleasing/leasing-portal-api/internal/registry"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

type profileStore interface {
	GetCompany(ctx context.Context, userID string) (*models.Company, error)
	UpsertCompany(ctx context.Context, company *models.Company) error
	GetContact(ctx context.Context, userID string) (*models.Contact, error)
	UpsertContact(ctx context.Context, contact *models.Contact) error
}

type profileUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type scheduleWriter interface {
	Upsert(ctx context.Context, p *models.PaymentSchedule) error
}

type registryFetcher interface {
	Fetch(ctx context.Context) (*registry.Registry, error)
}

type profileCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const profileCacheTTL = 10 * time.Minute

// ProfileService exposes company and contact details and keeps them in
// step with the customer registry.
type ProfileService struct {
	profiles  profileStore
	users     profileUserStore
	schedules scheduleWriter
	loader    registryFetcher
	cache     profileCache
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles profileStore, users profileUserStore, schedules scheduleWriter, loader registryFetcher, cache profileCache, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, users: users, schedules: schedules, loader: loader, cache: cache, logger: logger}
}

// GetProfile returns the stored company and contact details, served from
// cache when fresh.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	key := profileCacheKey(userID)
	if s.cache != nil {
		var cached models.Profile
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	profile := &models.Profile{}

	company, err := s.profiles.GetCompany(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	profile.Company = company

	contact, err := s.profiles.GetContact(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact")
	}
	profile.Contact = contact

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile, profileCacheTTL); err != nil {
			s.logger.Warn("failed to cache profile", zap.Error(err))
		}
	}

	return profile, nil
}

// LoadFromRegistry refreshes the user's profile from the customer
// registry over a fresh remote connection.
func (s *ProfileService) LoadFromRegistry(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	identity := models.Identity{UserID: user.ID, Email: user.Email}
	if user.INN != nil {
		identity.INN = *user.INN
	}
	if identity.Empty() {
		return nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}

	reg, err := s.loader.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ApplyRegistry(ctx, identity, reg); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

// ApplyRegistry writes the registry entry matching the identity into the
// company, contact and payment schedule tables. A missing entry is not an
// error: the registry simply has nothing for this customer yet.
func (s *ProfileService) ApplyRegistry(ctx context.Context, identity models.Identity, reg *registry.Registry) error {
	entry, err := registry.FindCustomer(reg, identity.INN, identity.Email)
	if err != nil {
		return err
	}
	if entry == nil {
		s.logger.Debug("no registry entry for user", zap.String("user_id", identity.UserID))
		return nil
	}

	company := &models.Company{
		UserID:       identity.UserID,
		Name:         entry.FullName,
		INN:          entry.INN,
		KPP:          entry.KPP,
		OGRN:         entry.OGRN,
		LegalAddress: entry.LegalAddress,
	}
	if err := s.profiles.UpsertCompany(ctx, company); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store company")
	}

	contact := &models.Contact{
		UserID:       identity.UserID,
		Name:         entry.ManagerName,
		ManagerEmail: entry.ManagerEmail,
		Email:        entry.Email,
		Phone:        entry.Phone,
	}
	if err := s.profiles.UpsertContact(ctx, contact); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store contact")
	}

	s.applySchedules(ctx, identity.UserID, entry)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, profileCacheKey(identity.UserID)); err != nil {
			s.logger.Warn("failed to invalidate cached profile", zap.Error(err))
		}
	}

	return nil
}

// CheckIdentity verifies an email/tax-id pair against the registry. Used at
// registration time; the caller decides what a registry outage means.
func (s *ProfileService) CheckIdentity(ctx context.Context, email, inn string) (bool, string, error) {
	reg, err := s.loader.Fetch(ctx)
	if err != nil {
		return false, "", err
	}
	ok, message := registry.ValidateMatch(reg, email, inn)
	return ok, message, nil
}

// applySchedules persists every registry-sourced payment row for the
// entry's contracts. Rows are numbered from 1 in file order; failures are
// logged and do not abort the rest of the profile load.
func (s *ProfileService) applySchedules(ctx context.Context, userID string, entry *registry.CustomerEntry) {
	now := time.Now().UTC()
	for _, contract := range entry.Contracts {
		for i, payment := range contract.Payments {
			row := &models.PaymentSchedule{
				UserID:         userID,
				ContractNumber: contract.Number,
				PaymentNumber:  i + 1,
				PaymentDate:    registry.ParseDate(payment.Date, now),
				Amount:         registry.ParseAmount(payment.Amount),
				Source:         models.ScheduleSourceRegistry,
			}
			if err := s.schedules.Upsert(ctx, row); err != nil {
				s.logger.Warn("failed to store registry payment",
					zap.String("contract", contract.Number),
					zap.Int("payment_number", row.PaymentNumber),
					zap.Error(err))
			}
		}
	}
}

func profileCacheKey(userID string) string {
	return "profile:" + userID
}
