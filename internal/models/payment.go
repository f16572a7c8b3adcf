package models

import "time"

// Schedule row provenance. Registry rows come from the shared customer
// registry; synthetic rows are the placeholder backfill a sync run creates
// for contracts without any schedule.
const (
	ScheduleSourceRegistry  = "registry"
	ScheduleSourceSynthetic = "synthetic"
)

// PaymentSchedule is one scheduled payment for a contract. Rows are
// numbered contiguously from 1 in chronological order.
type PaymentSchedule struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ContractNumber string    `db:"contract_number" json:"contract_number"`
	PaymentNumber  int       `db:"payment_number" json:"payment_number"`
	PaymentDate    time.Time `db:"payment_date" json:"payment_date"`
	Amount         float64   `db:"amount" json:"amount"`
	Source         string    `db:"source" json:"source"`
}
