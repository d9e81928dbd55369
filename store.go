package storefront

import (
	"context"
	"sync"
)

// AppState is the single observable snapshot held by the store. UserAuth is
// the session slice; the remaining fields are the reservation slice read by
// the browsing screens.
type AppState struct {
	UserAuth           SessionState
	Reservations       []Reservation
	Locations          []Location
	CurrentReservation CurrentReservation
}

// Store is the process-wide state container. It applies transition events
// sequentially under a mutex and notifies subscribers with the resulting
// snapshot. It is passed explicitly to whoever needs it; there is no
// package-level instance.
type Store struct {
	mu      sync.RWMutex
	state   AppState
	subs    map[int]func(AppState)
	nextSub int

	logger Logger
	wg     sync.WaitGroup
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithInitialState seeds the store with a starting snapshot.
func WithInitialState(state AppState) StoreOption {
	return func(s *Store) {
		s.state = state
	}
}

// WithStoreLogger overrides the logger used for async operation failures.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns an empty application store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		subs:   map[int]func(AppState){},
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a transition event synchronously and notifies
// subscribers with the new snapshot. Concurrent dispatches are serialized;
// ordering between asynchronous completions is last-write-wins.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	s.state = reduce(s.state, ev)
	next := s.state
	subs := make([]func(AppState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to receive every snapshot produced after a
// dispatch. The returned func cancels the subscription.
func (s *Store) Subscribe(fn func(AppState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Run executes an asynchronous operation without blocking the caller. The
// handler dispatches its own transition events back into the store; errors
// that escape it are logged, never surfaced as state.
func (s *Store) Run(ctx context.Context, h Handler, msg Message) {
	if h == nil || msg == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := h.Execute(ctx, msg); err != nil {
			s.logger.Error("operation %s: %v", msg.Type(), err)
		}
	}()
}

// Drain blocks until every operation started through Run has returned.
// Pending retries scheduled by those operations are not waited on.
func (s *Store) Drain() {
	s.wg.Wait()
}
