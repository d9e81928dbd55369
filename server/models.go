// Package server is a reference implementation of the remote auth service
// the storefront front-end talks to: login, signup, token validation,
// password reset requests, and authenticated profile updates over JSON.
package server

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record behind the auth API.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Name         string    `bun:"name" json:"name,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone        string    `bun:"phone_number" json:"phone,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"-"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"-"`
}

// PasswordReset records a reset request so the notification worker can pick
// it up. The API response never reveals whether the account exists.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID    *uuid.UUID `bun:"user_id"`
	Email     string     `bun:"email,notnull"`
	Status    string     `bun:"status,notnull"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

const (
	// ResetRequested is the initial status of a reset request
	ResetRequested = "requested"
	// ResetChanged marks a completed reset
	ResetChanged = "changed"
)

// CreateTables ensures the auth schema exists.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*PasswordReset)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create auth tables")
		}
	}
	return nil
}
