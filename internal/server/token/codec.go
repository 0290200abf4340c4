// Package token implements the session token codec: HS256-signed,
// time-bounded tokens in the standard three-segment base64url wire format.
// Signing and verification are delegated to golang-jwt; claims are never
// exposed before the signature has been checked.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/filmood/keygate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the account id travels in Subject, and Name
// carries the display name so clients can render it without a round trip.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Codec signs and verifies session tokens. The signing secret is injected
// at construction so it can be swapped per test.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec constructs a Codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// Encode mints a signed token for the account with issued-at = now and
// expires-at = now + ttl.
func (c *Codec) Encode(accountID, name string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies the token's signature (constant-time, HMAC only) and its
// expiry claim, and returns the claims. A lapsed exp claim maps to
// common.ErrTokenExpired; every other failure maps to common.ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Strict decoding rejects tokens whose unused trailing base64 bits
		// were altered; without it such edits decode to identical bytes.
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Hash returns the hex SHA-256 of a token string. Session rows are keyed by
// this value; the server never stores the token itself.
func Hash(tokenString string) string {
	h := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(h[:])
}
