package storefront

import "errors"

// ErrMissingRemoteAuth is returned when a machine is built without a remote service
var ErrMissingRemoteAuth = errors.New("missing remote auth service")

// ErrMissingSessionStore is returned when a machine is built without local storage
var ErrMissingSessionStore = errors.New("missing session store")

// ErrMissingStore is returned when a machine is built without an application store
var ErrMissingStore = errors.New("missing application store")
