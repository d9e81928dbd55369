package storefront

import "encoding/json"

// SessionStatus is the composite lifecycle state derived from SessionState.
type SessionStatus string

const (
	// StatusUninitialized means the initial load has not started
	StatusUninitialized SessionStatus = "uninitialized"
	// StatusLoading means the stored session is being read and validated
	StatusLoading SessionStatus = "loading"
	// StatusLoggingIn means a login request is in flight
	StatusLoggingIn SessionStatus = "logging_in"
	// StatusSaving means a profile save is in flight
	StatusSaving SessionStatus = "saving"
	// StatusAuthenticated is the resting state with a valid token
	StatusAuthenticated SessionStatus = "authenticated"
	// StatusUnauthenticated is the resting state without a token
	StatusUnauthenticated SessionStatus = "unauthenticated"
	// StatusSessionExpired means the stored token failed validation on load
	StatusSessionExpired SessionStatus = "session_expired"
)

// SessionState is the authoritative record of the user's authentication
// status. Exactly one instance lives in the application store; it is only
// replaced wholesale by the reducer, never mutated in place.
type SessionState struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	// Token is the opaque session credential. Empty means not authenticated.
	Token string `json:"token"`

	Loaded      bool `json:"loaded"`
	IsLoading   bool `json:"isLoading"`
	IsSaving    bool `json:"isSaving"`
	IsLoggingIn bool `json:"isLoggingIn"`

	LoginError               string `json:"loginError,omitempty"`
	SignupError              string `json:"signupError,omitempty"`
	PasswordRetrievedError   string `json:"passwordRetrievedError,omitempty"`
	PasswordRetrievedMessage string `json:"passwordRetrievedMessage,omitempty"`

	UserDataSaved bool `json:"userDataSaved,omitempty"`
}

// Status derives the composite lifecycle state. In-flight flags take
// precedence over resting states.
func (s SessionState) Status() SessionStatus {
	switch {
	case s.IsLoggingIn:
		return StatusLoggingIn
	case s.IsSaving:
		return StatusSaving
	case s.IsLoading:
		return StatusLoading
	case !s.Loaded:
		return StatusUninitialized
	case s.Token != "":
		return StatusAuthenticated
	case s.LoginError == MsgSessionExpired:
		return StatusSessionExpired
	default:
		return StatusUnauthenticated
	}
}

// Authenticated reports whether the session holds a token.
func (s SessionState) Authenticated() bool {
	return s.Token != ""
}

// Persistable extracts the subset of state written to the session store.
func (s SessionState) Persistable() PersistedSession {
	return PersistedSession{
		ID:       s.ID,
		Email:    s.Email,
		Password: s.Password,
		Name:     s.Name,
		Phone:    s.Phone,
		Token:    s.Token,
	}
}

// PersistedSession is the serialized counterpart of SessionState stored
// on-device under a single well-known key.
type PersistedSession struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Token    string `json:"token"`
}

// Encode serializes the session blob.
func (p PersistedSession) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePersistedSession parses a stored session blob.
func DecodePersistedSession(data []byte) (*PersistedSession, error) {
	p := &PersistedSession{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// patch builds a SessionPatch that merges every non-empty stored field.
func (p *PersistedSession) patch() SessionPatch {
	out := SessionPatch{}
	if p.ID != "" {
		out.ID = Ptr(p.ID)
	}
	if p.Email != "" {
		out.Email = Ptr(p.Email)
	}
	if p.Password != "" {
		out.Password = Ptr(p.Password)
	}
	if p.Name != "" {
		out.Name = Ptr(p.Name)
	}
	if p.Phone != "" {
		out.Phone = Ptr(p.Phone)
	}
	if p.Token != "" {
		out.Token = Ptr(p.Token)
	}
	return out
}
