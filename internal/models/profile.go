package models

// Company holds the customer's legal entity details, populated from the
// shared registry during sync or an explicit profile load.
type Company struct {
	ID           string `db:"id" json:"id"`
	UserID       string `db:"user_id" json:"user_id"`
	Name         string `db:"name" json:"name"`
	INN          string `db:"inn" json:"inn"`
	KPP          string `db:"kpp" json:"kpp"`
	OGRN         string `db:"ogrn" json:"ogrn"`
	LegalAddress string `db:"legal_address" json:"legal_address"`
}

// Profile combines the company and contact views returned to the portal.
type Profile struct {
	Company *Company `json:"company,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// Contact holds manager and contact details for the customer.
type Contact struct {
	ID           string `db:"id" json:"id"`
	UserID       string `db:"user_id" json:"user_id"`
	Name         string `db:"name" json:"name"`
	ManagerEmail string `db:"manager_email" json:"manager_email"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
}
