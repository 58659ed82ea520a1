package service

import "errors"

var (
	// ErrInvalidCredentials reports a failed password check at login.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrPrincipalNotFound reports a login attempt for an unknown
	// username or email.
	ErrPrincipalNotFound = errors.New("principal_not_found")

	// ErrSessionAlreadyActive reports a login attempt while the
	// principal's previous session is still live. The caller must log
	// out first; logging in never silently displaces a session.
	ErrSessionAlreadyActive = errors.New("session_already_active")

	// ErrRefreshNotFound unifies every reissue failure: the presented
	// refresh value never existed, was deleted, lapsed, or was forged.
	ErrRefreshNotFound = errors.New("refresh_token_not_found")

	// ErrMalformedRefresh reports a missing or empty presented refresh
	// value, distinct from one that fails to resolve.
	ErrMalformedRefresh = errors.New("malformed_refresh_token")

	// ErrUnauthenticated is the single opaque outcome for every access
	// token failure: bad signature, expired, wrong issuer, revoked.
	// Callers never learn which.
	ErrUnauthenticated = errors.New("unauthenticated")
)
