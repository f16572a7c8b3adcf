package models

import "time"

// Contract is a leasing contract document record.
type Contract struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Number   string    `db:"number" json:"number"`
	Date     time.Time `db:"date" json:"date"`
	Type     string    `db:"type" json:"type"`
	Amount   float64   `db:"amount" json:"amount"`
	Status   string    `db:"status" json:"status"`
	FilePath string    `db:"file_path" json:"file_path"`
}

// Act is an acceptance act record. Number intentionally carries the owning
// contract's number: several acts under one contract share the display
// number and stay distinct by id.
type Act struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Number         string    `db:"number" json:"number"`
	Date           time.Time `db:"date" json:"date"`
	Type           string    `db:"type" json:"type"`
	ContractNumber string    `db:"contract_number" json:"contract_number"`
	Amount         float64   `db:"amount" json:"amount"`
	FilePath       string    `db:"file_path" json:"file_path"`
}

// Invoice is an issued invoice record with a synthetic number.
type Invoice struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Number         string    `db:"number" json:"number"`
	Date           time.Time `db:"date" json:"date"`
	ContractNumber string    `db:"contract_number" json:"contract_number"`
	Amount         float64   `db:"amount" json:"amount"`
	Status         string    `db:"status" json:"status"`
	FilePath       string    `db:"file_path" json:"file_path"`
}

// OtherDocument covers everything that is not a contract, act or invoice.
type OtherDocument struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	FileType    string    `db:"file_type" json:"file_type"`
	FilePath    string    `db:"file_path" json:"file_path"`
}

// DocumentRecord is the category-tagged summary a sync run reports back.
type DocumentRecord struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Number   string `json:"number,omitempty"`
	Name     string `json:"name,omitempty"`
	FilePath string `json:"file_path"`
}

// SyncResult summarises one synchronization run. Skipped counts files that
// failed to download or persist, so an empty Documents list with a non-zero
// Skipped is distinguishable from a genuinely empty remote folder.
type SyncResult struct {
	Documents []DocumentRecord `json:"documents"`
	Count     int              `json:"count"`
	Skipped   int              `json:"skipped"`
}
