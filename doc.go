// Package storefront implements the state core of the storefront front-end:
// a single application store with reducer semantics, the session lifecycle
// state machine that drives authentication (load-on-start, login, signup,
// logout with deferred-readiness retry, password reset, profile save), and
// the reservation slice the browsing screens read from.
//
// Session lifecycle:
//   - SessionState is the authoritative record of the user's authentication
//     status. Its composite Status is derived from the in-flight flags and
//     token rather than stored explicitly.
//   - Machine owns all I/O: it talks to the RemoteAuth collaborator and the
//     SessionStore, and emits SessionEvent values. It never mutates state
//     directly.
//   - Store applies events through pure reducers and notifies subscribers
//     with immutable snapshots. Asynchronous operations run through
//     Store.Run so callers are never blocked.
//
// Remote failures are normalized at the call site: the machine logs the
// cause and stores one of a small set of fixed user-facing messages. Raw
// errors never reach state.
package storefront
