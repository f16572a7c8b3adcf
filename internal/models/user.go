package models

import "time"

// User represents a portal account stored in the users table. The INN (tax
// id) links the account to the customer's folder on the remote repository.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	INN          *string    `db:"inn" json:"inn,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Identity carries the fields used to locate a customer's remote data.
// Both fields empty is a fatal precondition for any remote lookup.
type Identity struct {
	UserID string
	INN    string
	Email  string
}

// Empty reports whether neither tax id nor email is available.
func (i Identity) Empty() bool {
	return i.INN == "" && i.Email == ""
}
