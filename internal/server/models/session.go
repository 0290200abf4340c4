package models

import "time"

// Session is the server-side record behind one issued token, keyed by the
// token's SHA-256 hash. Deleting the row revokes the token regardless of
// its signature still verifying. UserAgent is kept for audit only.
type Session struct {
	TokenHash  string
	AccountID  string
	ExpiresAt  time.Time
	Remembered bool
	CreatedAt  time.Time
	UserAgent  *string
}
