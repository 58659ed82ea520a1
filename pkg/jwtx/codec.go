package jwtx

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")

	// ErrWeakKey reports an HMAC key shorter than the HS256 block-safe
	// minimum of 32 bytes.
	ErrWeakKey = errors.New("jwtx: signing key must be at least 32 bytes")
)

const minKeyBytes = 32

// Codec signs and parses HS256 access tokens with a process-wide
// symmetric key. It has no side effects; both operations are pure
// functions of the key material and clock arguments.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec builds a Codec from a base64-encoded symmetric key. The
// issuer is stamped into every minted token and enforced on parse.
func NewCodec(encodedKey, issuer string) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedKey))
	if err != nil {
		// Raw (unpadded) encodings are accepted too.
		key, err = base64.RawStdEncoding.DecodeString(strings.TrimSpace(encodedKey))
		if err != nil {
			return nil, errors.New("jwtx: signing key is not valid base64")
		}
	}
	if len(key) < minKeyBytes {
		return nil, ErrWeakKey
	}
	if issuer == "" {
		return nil, errors.New("jwtx: issuer must not be empty")
	}
	return &Codec{key: key, issuer: issuer}, nil
}

// Issuer returns the configured issuer claim value.
func (c *Codec) Issuer() string { return c.issuer }

// Mint signs a new access token for the principal.
func (c *Codec) Mint(principalID, role string, now time.Time, ttl time.Duration) (string, error) {
	claims := NewAccessClaims(principalID, role, c.issuer, now, ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Parse verifies raw and returns its claims. Failures map to exactly
// one of ErrMalformed, ErrIssuer, ErrInvalidSig, ErrExpired. The issuer
// check is applied before signature verification so that a token minted
// for another environment is rejected as such even when its signature
// does not verify against this environment's key.
func (c *Codec) Parse(raw string) (Claims, error) {
	return c.parse(raw, false)
}

// ParseAllowExpired is Parse except that an expired token with a valid
// signature and issuer is returned successfully. Logout uses it: a
// session whose access token has lapsed must still be revocable.
func (c *Codec) ParseAllowExpired(raw string) (Claims, error) {
	return c.parse(raw, true)
}

func (c *Codec) parse(raw string, allowExpired bool) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformed
	}

	// Decode the claims without signature verification first. Issuer
	// mismatch must be reported independent of signature validity.
	var unverified Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(raw, &unverified); err != nil {
		return Claims{}, ErrMalformed
	}
	if err := unverified.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSig
		}
	}

	if err := claims.ValidateExpiry(time.Now().UTC()); err != nil {
		if !allowExpired {
			return Claims{}, err
		}
	}

	return claims, nil
}
