package storefront

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the remote-confirmed attributes of an authenticated user,
// as returned by token validation.
type Identity struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Credentials is the session material returned by login and signup.
type Credentials struct {
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Profile carries the editable user profile fields.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RemoteAuth is the contract of the remote authentication service. All
// calls are request/response; any rejection surfaces as an error which the
// session machine normalizes before it reaches state.
type RemoteAuth interface {
	Validate(ctx context.Context, token string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Signup(ctx context.Context, email, password string) (*Credentials, error)
	ResetPassword(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, token string, profile Profile) error
}

// SessionStore is the on-device key-value store holding the serialized
// session blob. Get returns (nil, nil) when the key is absent.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Message identifies an asynchronous operation dispatched through the
// store. Handlers keep the bus-compatible Execute(ctx, msg) shape.
type Message interface {
	Type() string
}

// Handler executes asynchronous operations for the store.
type Handler interface {
	Execute(ctx context.Context, msg Message) error
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] STORE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] STORE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] STORE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] STORE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}
