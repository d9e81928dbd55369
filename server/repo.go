package server

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrUserNotFound is returned when no account matches the lookup
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound)

// Users is the account repository behind the auth handlers.
type Users struct {
	db *bun.DB
}

// NewUsers returns a repository over db.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// Register creates an account. The ID is derived deterministically from
// the email so re-registering the same address never mints a second
// identity.
func (r *Users) Register(ctx context.Context, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		} else {
			user.ID = uuid.New()
		}
	}

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user")
	}
	return user, nil
}

// GetByID fetches a user by ID.
func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user")
	}
	return user, nil
}

// UpdateProfile stores the editable profile fields.
func (r *Users) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("name = ?", name).
		Set("phone_number = ?", phone).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}
	return nil
}

// TrackAttemptedLogin bumps the failed-attempt counter.
func (r *Users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = login_attempts + 1").
		Set("login_attempt_at = ?", now).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
	}
	return nil
}

// TrackSuccessfulLogin resets the attempt counter and stamps the login.
func (r *Users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = 0").
		Set("login_attempt_at = NULL").
		Set("loggedin_at = ?", now).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
	}
	return nil
}

// Resets records password reset requests.
type Resets struct {
	db *bun.DB
}

// NewResets returns a reset-request repository over db.
func NewResets(db *bun.DB) *Resets {
	return &Resets{db: db}
}

// Create stores a reset request in the requested state.
func (r *Resets) Create(ctx context.Context, userID *uuid.UUID, email string) (*PasswordReset, error) {
	reset := &PasswordReset{
		ID:     uuid.New(),
		UserID: userID,
		Email:  email,
		Status: ResetRequested,
	}
	if _, err := r.db.NewInsert().Model(reset).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset")
	}
	return reset, nil
}
