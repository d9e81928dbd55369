package storefront

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultLogoutRetryDelay is how long logout waits before re-checking an
// unloaded session.
const DefaultLogoutRetryDelay = 2 * time.Second

// defaultSessionKey is the well-known key the session blob lives under.
const defaultSessionKey = "userData"

// Fixed user-facing outcome messages. These are the only strings the
// machine ever stores; underlying errors go to the logger.
const (
	MsgSessionExpired      = "Session has expired"
	MsgLoginFailed         = "Login failed. Please check your credentials and try again"
	MsgSignupFailed        = "Sign up failed. Please check your credentials and try again"
	MsgPasswordResetFailed = "Password retrieve failed. Please check your credentials and try again"
	MsgPasswordResetSent   = "Password retrieve successful. A meessage has been sent to your email"
)

// Machine owns the session lifecycle. Every operation reads the current
// snapshot from the store, performs its I/O, and settles by dispatching
// transition events. Operations are safe to invoke from the store's async
// runner; state writes always go through Dispatch.
type Machine struct {
	store    *Store
	auth     RemoteAuth
	sessions SessionStore
	logger   Logger

	sessionKey string
	retryDelay time.Duration

	mu          sync.Mutex
	retryCancel context.CancelFunc
}

// MachineOption customizes machine construction.
type MachineOption func(*Machine)

// WithLogger overrides the machine logger.
func WithLogger(logger Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLogoutRetryDelay overrides the deferred-logout retry interval.
func WithLogoutRetryDelay(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.retryDelay = d
		}
	}
}

// WithSessionKey overrides the storage key for the session blob.
func WithSessionKey(key string) MachineOption {
	return func(m *Machine) {
		if key != "" {
			m.sessionKey = key
		}
	}
}

// NewMachine builds a session machine bound to the given store and
// collaborators.
func NewMachine(store *Store, auth RemoteAuth, sessions SessionStore, opts ...MachineOption) (*Machine, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	if auth == nil {
		return nil, ErrMissingRemoteAuth
	}
	if sessions == nil {
		return nil, ErrMissingSessionStore
	}

	m := &Machine{
		store:      store,
		auth:       auth,
		sessions:   sessions,
		logger:     defLogger{},
		sessionKey: defaultSessionKey,
		retryDelay: DefaultLogoutRetryDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Execute routes an async message to its operation, keeping the machine
// bus-compatible with the store's Run contract.
func (m *Machine) Execute(ctx context.Context, msg Message) error {
	switch msg := msg.(type) {
	case LoadSessionMessage:
		return m.LoadSession(ctx)
	case LoginMessage:
		return m.Login(ctx, msg.Email, msg.Password)
	case SignupMessage:
		return m.Signup(ctx, msg.Email, msg.Password)
	case LogoutMessage:
		return m.Logout(ctx)
	case PasswordResetMessage:
		return m.RequestPasswordReset(ctx, msg.Email)
	case SaveProfileMessage:
		return m.SaveProfile(ctx, msg.Name, msg.Phone)
	default:
		return goerrors.New("unknown session message", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"type": msg.Type()})
	}
}

// LoadSession is the startup entry point. It performs exactly one storage
// read; when a session is stored it makes at most one remote validation
// call. Validation failure of any kind settles into the expired resting
// state with the token cleared.
func (m *Machine) LoadSession(ctx context.Context) error {
	m.store.Dispatch(SessionEvent{
		Type:  EventSessionLoading,
		Patch: SessionPatch{IsLoading: Ptr(true)},
	})

	raw, err := m.sessions.Get(ctx, m.sessionKey)
	if err != nil {
		// An unreadable device store is indistinguishable from an empty
		// one for the rest of the lifecycle.
		m.logger.Error("session storage read: %v", err)
		raw = nil
	}

	if len(raw) == 0 {
		m.store.Dispatch(SessionEvent{
			Type:  EventSessionLoaded,
			Patch: SessionPatch{Loaded: Ptr(true), IsLoading: Ptr(false)},
		})
		return nil
	}

	stored, err := DecodePersistedSession(raw)
	if err != nil {
		m.logger.Error("session blob decode: %v", err)
		m.store.Dispatch(SessionEvent{
			Type:  EventSessionLoaded,
			Patch: SessionPatch{Loaded: Ptr(true), IsLoading: Ptr(false)},
		})
		return nil
	}

	identity, err := m.auth.Validate(ctx, stored.Token)
	if err != nil || identity == nil {
		if err != nil {
			m.logger.Warn("stored token rejected: %v", err)
		}
		patch := stored.patch()
		patch.Token = Ptr("")
		patch.LoginError = Ptr(MsgSessionExpired)
		patch.Loaded = Ptr(true)
		patch.IsLoading = Ptr(false)
		m.store.Dispatch(SessionEvent{Type: EventSessionLoaded, Patch: patch})
		return nil
	}

	patch := stored.patch()
	mergeIdentity(&patch, identity)
	patch.LoginError = Ptr("")
	patch.Loaded = Ptr(true)
	patch.IsLoading = Ptr(false)
	m.store.Dispatch(SessionEvent{Type: EventSessionLoaded, Patch: patch})
	return nil
}

// Login authenticates with the remote service. Any rejection, and a
// success response without a token, settle into the same fixed error
// message; nothing is persisted on failure.
func (m *Machine) Login(ctx context.Context, email, password string) error {
	m.store.Dispatch(SessionEvent{
		Type: EventLoginStarted,
		Patch: SessionPatch{
			IsLoggingIn: Ptr(true),
			LoginError:  Ptr(""),
			Loaded:      Ptr(true),
		},
	})

	creds, err := m.auth.Login(ctx, email, password)
	if err != nil || creds == nil || creds.Token == "" {
		if err != nil {
			m.logger.Warn("login rejected: %v", err)
		}
		m.store.Dispatch(SessionEvent{
			Type: EventLoginSettled,
			Patch: SessionPatch{
				Email:       Ptr(email),
				Password:    Ptr(password),
				Loaded:      Ptr(true),
				IsLoggingIn: Ptr(false),
				LoginError:  Ptr(MsgLoginFailed),
			},
		})
		return nil
	}

	patch := SessionPatch{
		Email:       Ptr(email),
		Password:    Ptr(password),
		Token:       Ptr(creds.Token),
		IsLoggingIn: Ptr(false),
		Loaded:      Ptr(true),
	}
	if creds.ID != "" {
		patch.ID = Ptr(creds.ID)
	}
	if creds.Name != "" {
		patch.Name = Ptr(creds.Name)
	}
	if creds.Phone != "" {
		patch.Phone = Ptr(creds.Phone)
	}

	// The stored blob holds only the response and the submitted credentials;
	// fields from a previous session never leak into it.
	if err := m.persist(ctx, patch.Apply(SessionState{})); err != nil {
		return err
	}

	m.store.Dispatch(SessionEvent{Type: EventLoginSettled, Patch: patch})
	return nil
}

// Signup registers a new account. On success only the returned credentials
// and the submitted email/password are persisted and dispatched; the
// loading flags are intentionally left alone, unlike login.
func (m *Machine) Signup(ctx context.Context, email, password string) error {
	creds, err := m.auth.Signup(ctx, email, password)
	if err != nil || creds == nil || creds.Token == "" {
		if err != nil {
			m.logger.Warn("signup rejected: %v", err)
		}
		m.store.Dispatch(SessionEvent{
			Type: EventUserDataSaved,
			Patch: SessionPatch{
				Email:       Ptr(email),
				Password:    Ptr(password),
				SignupError: Ptr(MsgSignupFailed),
			},
		})
		return nil
	}

	patch := SessionPatch{
		Email:    Ptr(email),
		Password: Ptr(password),
		Token:    Ptr(creds.Token),
		ID:       Ptr(creds.ID),
	}

	if err := m.persist(ctx, patch.Apply(SessionState{})); err != nil {
		return err
	}

	m.store.Dispatch(SessionEvent{Type: EventUserDataSaved, Patch: patch})
	return nil
}

// Logout clears the session token. If the initial load has not completed
// it must not destroy an unknown state: it re-triggers LoadSession and
// schedules a single retry after the configured delay, repeating until the
// session is known. The retry is bound to ctx and is cancelled by Close.
func (m *Machine) Logout(ctx context.Context) error {
	cur := m.store.State().UserAuth

	if !cur.Loaded && !cur.IsLoading {
		if err := m.LoadSession(ctx); err != nil {
			m.logger.Error("logout-triggered load: %v", err)
		}
		m.scheduleLogoutRetry(ctx)
		return nil
	}

	next := cur
	next.Token = ""
	if err := m.persist(ctx, next); err != nil {
		return err
	}

	m.store.Dispatch(SessionEvent{
		Type: EventLoginSettled,
		Patch: SessionPatch{
			Token:  Ptr(""),
			Loaded: Ptr(true),
		},
	})
	return nil
}

// RequestPasswordReset asks the remote service to start a reset flow. The
// outcome is one of two fixed messages; failures are logged first.
func (m *Machine) RequestPasswordReset(ctx context.Context, email string) error {
	if err := m.auth.ResetPassword(ctx, email); err != nil {
		m.logger.Error("password reset request: %v", err)
		m.store.Dispatch(SessionEvent{
			Type: EventUserDataSaved,
			Patch: SessionPatch{
				Email:                  Ptr(email),
				Loaded:                 Ptr(true),
				PasswordRetrievedError: Ptr(MsgPasswordResetFailed),
			},
		})
		return nil
	}

	m.store.Dispatch(SessionEvent{
		Type: EventUserDataSaved,
		Patch: SessionPatch{
			Email:                    Ptr(email),
			Loaded:                   Ptr(true),
			PasswordRetrievedMessage: Ptr(MsgPasswordResetSent),
		},
	})
	return nil
}

// SaveProfile updates the profile through the authenticated endpoint.
// Success and failure converge on the same settled state; the failure is
// only logged. The result is not written to the session store.
func (m *Machine) SaveProfile(ctx context.Context, name, phone string) error {
	cur := m.store.State().UserAuth

	m.store.Dispatch(SessionEvent{
		Type:  EventUserDataSaving,
		Patch: SessionPatch{IsSaving: Ptr(true)},
	})

	if err := m.auth.UpdateProfile(ctx, cur.Token, Profile{Name: name, Phone: phone}); err != nil {
		m.logger.Error("profile save: %v", err)
	}

	m.store.Dispatch(SessionEvent{
		Type: EventUserDataSaved,
		Patch: SessionPatch{
			ID:            Ptr(cur.ID),
			Name:          Ptr(name),
			Phone:         Ptr(phone),
			IsSaving:      Ptr(false),
			UserDataSaved: Ptr(true),
		},
	})
	return nil
}

// Close cancels any pending logout retry.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.retryCancel != nil {
		m.retryCancel()
		m.retryCancel = nil
	}
}

func (m *Machine) scheduleLogoutRetry(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// One pending retry at a time.
	if m.retryCancel != nil {
		m.retryCancel()
	}

	rctx, cancel := context.WithCancel(ctx)
	m.retryCancel = cancel

	timer := time.NewTimer(m.retryDelay)
	go func() {
		defer timer.Stop()
		select {
		case <-rctx.Done():
			return
		case <-timer.C:
			// Re-enter with the caller's context, not rctx: a retry that
			// schedules another round must not derive it from the context
			// its own replacement is about to cancel.
			if err := m.Logout(ctx); err != nil {
				m.logger.Error("logout retry: %v", err)
			}
		}
	}()
}

func (m *Machine) persist(ctx context.Context, state SessionState) error {
	blob, err := state.Persistable().Encode()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session")
	}
	if err := m.sessions.Set(ctx, m.sessionKey, blob); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}
	return nil
}

func mergeIdentity(patch *SessionPatch, identity *Identity) {
	if identity.ID != "" {
		patch.ID = Ptr(identity.ID)
	}
	if identity.Email != "" {
		patch.Email = Ptr(identity.Email)
	}
	if identity.Name != "" {
		patch.Name = Ptr(identity.Name)
	}
	if identity.Phone != "" {
		patch.Phone = Ptr(identity.Phone)
	}
}
