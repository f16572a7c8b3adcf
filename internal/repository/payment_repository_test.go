package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investleasing/leasing-portal-api/internal/models"
)

func TestUpsertPaymentSchedule(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentScheduleRepository(db)

	mock.ExpectExec("INSERT INTO payment_schedules").
		WillReturnResult(sqlmock.NewResult(1, 1))

	p := &models.PaymentSchedule{
		UserID:         "u1",
		ContractNumber: "ДЛ-001",
		PaymentNumber:  1,
		PaymentDate:    time.Now(),
		Amount:         15000.50,
		Source:         models.ScheduleSourceRegistry,
	}
	err := repo.Upsert(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByContract(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "contract_number", "payment_number", "payment_date", "amount", "source"}).
		AddRow("p1", "u1", "ДЛ-001", 1, now, 15000.50, models.ScheduleSourceRegistry).
		AddRow("p2", "u1", "ДЛ-001", 2, now.AddDate(0, 1, 0), 15000.50, models.ScheduleSourceRegistry)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, contract_number, payment_number, payment_date, amount, source FROM payment_schedules WHERE user_id = $1 AND contract_number = $2 ORDER BY payment_number")).
		WithArgs("u1", "ДЛ-001").
		WillReturnRows(rows)

	payments, err := repo.ListByContract(context.Background(), "u1", "ДЛ-001")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, 1, payments[0].PaymentNumber)
	assert.Equal(t, 2, payments[1].PaymentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByContract(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(12)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payment_schedules WHERE user_id = $1 AND contract_number = $2")).
		WithArgs("u1", "ДЛ-001").
		WillReturnRows(rows)

	total, err := repo.CountByContract(context.Background(), "u1", "ДЛ-001")
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
