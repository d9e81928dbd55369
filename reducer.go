package storefront

// ReduceSession applies a session transition event to the previous state.
// Unknown event types leave the state untouched.
func ReduceSession(prev SessionState, ev SessionEvent) SessionState {
	switch ev.Type {
	case EventSessionLoading,
		EventSessionLoaded,
		EventLoginStarted,
		EventLoginSettled,
		EventUserDataSaving,
		EventUserDataSaved:
		return ev.Patch.Apply(prev)
	default:
		return prev
	}
}

// reduce routes an event to the slice it belongs to.
func reduce(prev AppState, ev Event) AppState {
	next := prev
	switch ev := ev.(type) {
	case SessionEvent:
		next.UserAuth = ReduceSession(prev.UserAuth, ev)
	case ReservationEvent:
		next = ReduceReservation(prev, ev)
	}
	return next
}
