package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/investleasing/leasing-portal-api/internal/models"
)

// ProfileRepository stores company and contact details sourced from the
// customer registry. Both tables hold at most one row per user.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetCompany returns the company row for a user.
func (r *ProfileRepository) GetCompany(ctx context.Context, userID string) (*models.Company, error) {
	const query = `SELECT id, user_id, name, inn, kpp, ogrn, legal_address FROM companies WHERE user_id = $1 LIMIT 1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &company, nil
}

// UpsertCompany creates the user's company row or refreshes its fields.
func (r *ProfileRepository) UpsertCompany(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	const query = `INSERT INTO companies (id, user_id, name, inn, kpp, ogrn, legal_address)
		VALUES (:id, :user_id, :name, :inn, :kpp, :ogrn, :legal_address)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, inn = EXCLUDED.inn, kpp = EXCLUDED.kpp, ogrn = EXCLUDED.ogrn, legal_address = EXCLUDED.legal_address`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

// GetContact returns the contact row for a user.
func (r *ProfileRepository) GetContact(ctx context.Context, userID string) (*models.Contact, error) {
	const query = `SELECT id, user_id, name, manager_email, email, phone FROM contacts WHERE user_id = $1 LIMIT 1`
	var contact models.Contact
	if err := r.db.GetContext(ctx, &contact, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

// UpsertContact creates the user's contact row or refreshes its fields.
func (r *ProfileRepository) UpsertContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	const query = `INSERT INTO contacts (id, user_id, name, manager_email, email, phone)
		VALUES (:id, :user_id, :name, :manager_email, :email, :phone)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, manager_email = EXCLUDED.manager_email, email = EXCLUDED.email, phone = EXCLUDED.phone`
	if _, err := r.db.NamedExecContext(ctx, query, contact); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}
