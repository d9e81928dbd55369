package storefront

// EventType tags a state transition event.
type EventType string

const (
	// EventSessionLoading marks the start of the load-from-storage step
	EventSessionLoading EventType = "session.loading"
	// EventSessionLoaded settles the load step into a resting state
	EventSessionLoaded EventType = "session.loaded"
	// EventLoginStarted marks a login request in flight
	EventLoginStarted EventType = "session.logging_in"
	// EventLoginSettled settles a login (or logout) into a resting state
	EventLoginSettled EventType = "session.login"
	// EventUserDataSaving marks a profile save in flight
	EventUserDataSaving EventType = "session.saving"
	// EventUserDataSaved settles a profile save, signup, or password reset
	EventUserDataSaved EventType = "session.saved"

	// EventReservationUpdated merges fields into the current reservation
	EventReservationUpdated EventType = "reservation.updated"
	// EventReservationReset clears the current reservation selection
	EventReservationReset EventType = "reservation.reset"
	// EventReservationSubmitted appends a reservation and clears selection
	EventReservationSubmitted EventType = "reservation.submitted"
)

// Event is a state transition descriptor applied by the store.
type Event interface {
	EventType() EventType
}

// SessionEvent is one variant of the session transition union: a type tag
// plus the partial state it merges over the previous SessionState.
type SessionEvent struct {
	Type  EventType
	Patch SessionPatch
}

func (e SessionEvent) EventType() EventType { return e.Type }

// SessionPatch is a partial SessionState. Nil fields are left untouched by
// the reducer; non-nil fields replace the previous value, so an explicit
// empty string clears a field.
type SessionPatch struct {
	ID       *string
	Email    *string
	Password *string
	Name     *string
	Phone    *string
	Token    *string

	Loaded      *bool
	IsLoading   *bool
	IsSaving    *bool
	IsLoggingIn *bool

	LoginError               *string
	SignupError              *string
	PasswordRetrievedError   *string
	PasswordRetrievedMessage *string

	UserDataSaved *bool
}

// Apply merges the patch over prev and returns the next state.
func (p SessionPatch) Apply(prev SessionState) SessionState {
	next := prev
	if p.ID != nil {
		next.ID = *p.ID
	}
	if p.Email != nil {
		next.Email = *p.Email
	}
	if p.Password != nil {
		next.Password = *p.Password
	}
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Phone != nil {
		next.Phone = *p.Phone
	}
	if p.Token != nil {
		next.Token = *p.Token
	}
	if p.Loaded != nil {
		next.Loaded = *p.Loaded
	}
	if p.IsLoading != nil {
		next.IsLoading = *p.IsLoading
	}
	if p.IsSaving != nil {
		next.IsSaving = *p.IsSaving
	}
	if p.IsLoggingIn != nil {
		next.IsLoggingIn = *p.IsLoggingIn
	}
	if p.LoginError != nil {
		next.LoginError = *p.LoginError
	}
	if p.SignupError != nil {
		next.SignupError = *p.SignupError
	}
	if p.PasswordRetrievedError != nil {
		next.PasswordRetrievedError = *p.PasswordRetrievedError
	}
	if p.PasswordRetrievedMessage != nil {
		next.PasswordRetrievedMessage = *p.PasswordRetrievedMessage
	}
	if p.UserDataSaved != nil {
		next.UserDataSaved = *p.UserDataSaved
	}
	return next
}
