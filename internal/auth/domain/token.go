package domain

import "time"

// TokenPair is the result of a successful login or reissue.
type TokenPair struct {
	// AccessToken is the signed, self-contained bearer credential.
	AccessToken string

	// RefreshToken is the opaque server-side-validated value. On
	// reissue it is returned unchanged; only logout or TTL expiry
	// retires it.
	RefreshToken string

	// ExpiresIn is the access token lifetime at mint time.
	ExpiresIn time.Duration
}
