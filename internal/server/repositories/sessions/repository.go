// Package sessions declares the server-side repository contract for session
// records. A session row is the single source of truth for whether a token
// is still usable: deleting it revokes the token early.
package sessions

import (
	"context"
	"time"

	"github.com/filmood/keygate/internal/server/models"
)

// Repository persists session records keyed by token hash.
type Repository interface {
	// Create inserts a new session row. Token hashes are unique by
	// construction; a collision is an internal error, not a handled case.
	Create(ctx context.Context, session *models.Session) error

	// Get returns the session for the given token hash, or
	// common.ErrorNotFound.
	Get(ctx context.Context, tokenHash string) (*models.Session, error)

	// Delete removes a session by token hash. Deleting a missing row is
	// not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes all sessions whose expiry is before now and
	// returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
