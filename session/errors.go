package session

import "errors"

var (
	// ErrBadCredentials indicates the identity endpoint rejected the login.
	// This is the expected, user-correctable failure: no session state changes.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates an operation that requires a session was
	// attempted without one.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrSessionExpired indicates the credential chain is unrecoverable: the
	// refresh token was rejected or expired. The session has already been
	// logged out by the time this error is observed.
	ErrSessionExpired = errors.New("session expired")
)
