package models

import "errors"

// Domain specific errors for authentication and session handling.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrNoUser          = errors.New("no user present in session")
	ErrNoToken         = errors.New("no token present in session")
	ErrNotHydrated     = errors.New("session store not hydrated yet")
)
