package models

import "time"

// User is an account. Every other entity is owned by exactly one user.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Roles a user may hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
