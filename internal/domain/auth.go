// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents an account holder. Every client, work session and invoice
// is owned by exactly one user.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	VerifyToken  string
	VerifyExpiry time.Time
	CreatedAt    time.Time
}

// AuthSession represents an active login session.
type AuthSession struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByVerifyToken(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, u *User) error
	MarkVerified(ctx context.Context, id int64) error
}

// AuthSessionRepository defines the port for login-session persistence.
type AuthSessionRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*AuthSession, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
