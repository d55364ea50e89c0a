// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account.
//
// Email is stored lower-cased and trimmed and is unique. PasswordHash is a
// bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id"    db:"id"`
	Name         string    `json:"name"  db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-"     db:"password_hash"`
	CreatedAt    time.Time `json:"-"     db:"created_at"`
}
