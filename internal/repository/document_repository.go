package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/investleasing/leasing-portal-api/internal/models"
)

// DocumentRepository stores synchronized document records. Every upsert is
// keyed on (user_id, file_path) so a repeated sync run refreshes metadata
// instead of duplicating rows.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// UpsertContract inserts or refreshes a contract record and fills its ID.
func (r *DocumentRepository) UpsertContract(ctx context.Context, c *models.Contract) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const query = `INSERT INTO contracts (id, user_id, number, date, type, amount, status, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, file_path) DO UPDATE SET number = EXCLUDED.number, date = EXCLUDED.date, type = EXCLUDED.type, amount = EXCLUDED.amount, status = EXCLUDED.status
		RETURNING id`
	if err := r.db.GetContext(ctx, &c.ID, query, c.ID, c.UserID, c.Number, c.Date, c.Type, c.Amount, c.Status, c.FilePath); err != nil {
		return fmt.Errorf("upsert contract: %w", err)
	}
	return nil
}

// UpsertAct inserts or refreshes an act record and fills its ID.
func (r *DocumentRepository) UpsertAct(ctx context.Context, a *models.Act) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const query = `INSERT INTO acts (id, user_id, number, date, type, contract_number, amount, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, file_path) DO UPDATE SET number = EXCLUDED.number, date = EXCLUDED.date, type = EXCLUDED.type, contract_number = EXCLUDED.contract_number, amount = EXCLUDED.amount
		RETURNING id`
	if err := r.db.GetContext(ctx, &a.ID, query, a.ID, a.UserID, a.Number, a.Date, a.Type, a.ContractNumber, a.Amount, a.FilePath); err != nil {
		return fmt.Errorf("upsert act: %w", err)
	}
	return nil
}

// UpsertInvoice inserts or refreshes an invoice record and fills its ID.
// The synthetic invoice number is only written on first insert so repeated
// sync runs keep a stable number.
func (r *DocumentRepository) UpsertInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	const query = `INSERT INTO invoices (id, user_id, number, date, contract_number, amount, status, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, file_path) DO UPDATE SET date = EXCLUDED.date, contract_number = EXCLUDED.contract_number, amount = EXCLUDED.amount, status = EXCLUDED.status
		RETURNING id, number`
	row := r.db.QueryRowxContext(ctx, query, inv.ID, inv.UserID, inv.Number, inv.Date, inv.ContractNumber, inv.Amount, inv.Status, inv.FilePath)
	if err := row.Scan(&inv.ID, &inv.Number); err != nil {
		return fmt.Errorf("upsert invoice: %w", err)
	}
	return nil
}

// UpsertOther inserts or refreshes an uncategorized document record.
func (r *DocumentRepository) UpsertOther(ctx context.Context, d *models.OtherDocument) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	const query = `INSERT INTO other_documents (id, user_id, name, date, description, file_size, file_type, file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, file_path) DO UPDATE SET name = EXCLUDED.name, date = EXCLUDED.date, description = EXCLUDED.description, file_size = EXCLUDED.file_size, file_type = EXCLUDED.file_type
		RETURNING id`
	if err := r.db.GetContext(ctx, &d.ID, query, d.ID, d.UserID, d.Name, d.Date, d.Description, d.FileSize, d.FileType, d.FilePath); err != nil {
		return fmt.Errorf("upsert other document: %w", err)
	}
	return nil
}

// ListContracts returns all contract records for a user, newest first.
func (r *DocumentRepository) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	const query = `SELECT id, user_id, number, date, type, amount, status, file_path FROM contracts WHERE user_id = $1 ORDER BY date DESC, number`
	var contracts []models.Contract
	if err := r.db.SelectContext(ctx, &contracts, query, userID); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, nil
}

// ListActs returns all act records for a user, newest first.
func (r *DocumentRepository) ListActs(ctx context.Context, userID string) ([]models.Act, error) {
	const query = `SELECT id, user_id, number, date, type, contract_number, amount, file_path FROM acts WHERE user_id = $1 ORDER BY date DESC, number`
	var acts []models.Act
	if err := r.db.SelectContext(ctx, &acts, query, userID); err != nil {
		return nil, fmt.Errorf("list acts: %w", err)
	}
	return acts, nil
}

// ListInvoices returns all invoice records for a user, newest first.
func (r *DocumentRepository) ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	const query = `SELECT id, user_id, number, date, contract_number, amount, status, file_path FROM invoices WHERE user_id = $1 ORDER BY date DESC, number`
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, userID); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// ListOthers returns all uncategorized document records for a user.
func (r *DocumentRepository) ListOthers(ctx context.Context, userID string) ([]models.OtherDocument, error) {
	const query = `SELECT id, user_id, name, date, description, file_size, file_type, file_path FROM other_documents WHERE user_id = $1 ORDER BY date DESC, name`
	var docs []models.OtherDocument
	if err := r.db.SelectContext(ctx, &docs, query, userID); err != nil {
		return nil, fmt.Errorf("list other documents: %w", err)
	}
	return docs, nil
}

// GetContract returns one contract by id.
func (r *DocumentRepository) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	const query = `SELECT id, user_id, number, date, type, amount, status, file_path FROM contracts WHERE id = $1 LIMIT 1`
	var c models.Contract
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return &c, nil
}

// GetAct returns one act by id.
func (r *DocumentRepository) GetAct(ctx context.Context, id string) (*models.Act, error) {
	const query = `SELECT id, user_id, number, date, type, contract_number, amount, file_path FROM acts WHERE id = $1 LIMIT 1`
	var a models.Act
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get act: %w", err)
	}
	return &a, nil
}

// GetInvoice returns one invoice by id.
func (r *DocumentRepository) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	const query = `SELECT id, user_id, number, date, contract_number, amount, status, file_path FROM invoices WHERE id = $1 LIMIT 1`
	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetOther returns one uncategorized document by id.
func (r *DocumentRepository) GetOther(ctx context.Context, id string) (*models.OtherDocument, error) {
	const query = `SELECT id, user_id, name, date, description, file_size, file_type, file_path FROM other_documents WHERE id = $1 LIMIT 1`
	var d models.OtherDocument
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get other document: %w", err)
	}
	return &d, nil
}
