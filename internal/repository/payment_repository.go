package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/investleasing/leasing-portal-api/internal/models"
)

// PaymentScheduleRepository stores payment schedule rows. Rows are keyed on
// (user_id, contract_number, payment_number); registry-sourced rows replace
// synthetic ones but a synthetic writer never downgrades a registry row.
type PaymentScheduleRepository struct {
	db *sqlx.DB
}

// NewPaymentScheduleRepository creates a new instance of PaymentScheduleRepository.
func NewPaymentScheduleRepository(db *sqlx.DB) *PaymentScheduleRepository {
	return &PaymentScheduleRepository{db: db}
}

// Upsert inserts or refreshes one schedule row. A conflicting row is only
// overwritten when the incoming source outranks or equals the stored one.
func (r *PaymentScheduleRepository) Upsert(ctx context.Context, p *models.PaymentSchedule) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const query = `INSERT INTO payment_schedules (id, user_id, contract_number, payment_number, payment_date, amount, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, contract_number, payment_number) DO UPDATE
		SET payment_date = EXCLUDED.payment_date, amount = EXCLUDED.amount, source = EXCLUDED.source
		WHERE payment_schedules.source = 'synthetic' OR EXCLUDED.source = 'registry'`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.ContractNumber, p.PaymentNumber, p.PaymentDate, p.Amount, p.Source); err != nil {
		return fmt.Errorf("upsert payment schedule: %w", err)
	}
	return nil
}

// ListByUserID returns every schedule row for a user in contract order.
func (r *PaymentScheduleRepository) ListByUserID(ctx context.Context, userID string) ([]models.PaymentSchedule, error) {
	const query = `SELECT id, user_id, contract_number, payment_number, payment_date, amount, source FROM payment_schedules WHERE user_id = $1 ORDER BY contract_number, payment_number`
	var rows []models.PaymentSchedule
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list payment schedules: %w", err)
	}
	return rows, nil
}

// ListByContract returns the schedule for one contract in payment order.
func (r *PaymentScheduleRepository) ListByContract(ctx context.Context, userID, contractNumber string) ([]models.PaymentSchedule, error) {
	const query = `SELECT id, user_id, contract_number, payment_number, payment_date, amount, source FROM payment_schedules WHERE user_id = $1 AND contract_number = $2 ORDER BY payment_number`
	var rows []models.PaymentSchedule
	if err := r.db.SelectContext(ctx, &rows, query, userID, contractNumber); err != nil {
		return nil, fmt.Errorf("list contract payment schedule: %w", err)
	}
	return rows, nil
}

// CountByContract reports how many schedule rows a contract already has.
func (r *PaymentScheduleRepository) CountByContract(ctx context.Context, userID, contractNumber string) (int, error) {
	const query = `SELECT COUNT(*) FROM payment_schedules WHERE user_id = $1 AND contract_number = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID, contractNumber); err != nil {
		return 0, fmt.Errorf("count contract payment schedule: %w", err)
	}
	return total, nil
}
