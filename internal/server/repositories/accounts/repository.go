// Package accounts declares the server-side repository contract for account
// records, which are looked up by the hash of the client's access key.
package accounts

import (
	"context"

	"github.com/filmood/keygate/internal/server/models"
)

// Repository persists account records.
type Repository interface {
	// Create inserts a new account. Inserting a key hash that is already
	// registered returns common.ErrorConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByKeyHash returns the account owning the given key hash, or
	// common.ErrorNotFound.
	GetByKeyHash(ctx context.Context, keyHash string) (*models.Account, error)

	// GetByID returns the account with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// TouchLastLogin sets the account's last_login_at to the current time.
	TouchLastLogin(ctx context.Context, id string) error
}
