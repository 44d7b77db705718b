package models

import "time"

// User represents an account that owns one or more access keys. Users are
// created only by the seed command; there is no signup surface.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}
