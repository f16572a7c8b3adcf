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

func TestUpsertContractFillsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("stored-id")
	mock.ExpectQuery("INSERT INTO contracts").WillReturnRows(rows)

	contract := &models.Contract{UserID: "u1", Number: "ДЛ-001", Date: time.Now(), Type: "Договор лизинга", FilePath: "/uploads/contracts/ДЛ-001_dogovor.pdf"}
	err := repo.UpsertContract(context.Background(), contract)
	require.NoError(t, err)
	assert.Equal(t, "stored-id", contract.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertInvoiceKeepsStoredNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	// Conflict path: the stored row keeps its original synthetic number.
	rows := sqlmock.NewRows([]string{"id", "number"}).AddRow("inv-1", "ДЛ-001-INV-1700000000")
	mock.ExpectQuery("INSERT INTO invoices").WillReturnRows(rows)

	inv := &models.Invoice{UserID: "u1", Number: "ДЛ-001-INV-1800000000", ContractNumber: "ДЛ-001", Date: time.Now(), FilePath: "/uploads/invoices/ДЛ-001_schet.pdf"}
	err := repo.UpsertInvoice(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
	assert.Equal(t, "ДЛ-001-INV-1700000000", inv.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "number", "date", "type", "contract_number", "amount", "file_path"}).
		AddRow("a1", "u1", "ДЛ-001", now, "АПП лизинга", "ДЛ-001", 0.0, "/uploads/acts/ДЛ-001_app.pdf").
		AddRow("a2", "u1", "ДЛ-001", now, "Акт сверки", "ДЛ-001", 0.0, "/uploads/acts/ДЛ-001_sverka.pdf")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, number, date, type, contract_number, amount, file_path FROM acts WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	acts, err := repo.ListActs(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	// Acts share the contract number but stay distinct rows.
	assert.Equal(t, acts[0].Number, acts[1].Number)
	assert.NotEqual(t, acts[0].ID, acts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOther(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "date", "description", "file_size", "file_type", "file_path"}).
		AddRow("d1", "u1", "ПТС/ПСМ", now, "pts_scan.pdf", int64(1024), "pdf", "/uploads/others/ДЛ-001_pts_scan.pdf")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, date, description, file_size, file_type, file_path FROM other_documents WHERE id = $1 LIMIT 1")).
		WithArgs("d1").
		WillReturnRows(rows)

	doc, err := repo.GetOther(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "ПТС/ПСМ", doc.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
