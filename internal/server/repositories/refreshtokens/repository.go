// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for accountID.
	Create(ctx context.Context, accountID string, token string, expires time.Time) error

	// Find looks up a refresh token and locks its row for the rest of the
	// surrounding transaction. A missing token yields common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token. Deleting a non-existent token is not
	// an error.
	Delete(ctx context.Context, token string) error

	// DeleteAllForAccount revokes every refresh token of accountID.
	DeleteAllForAccount(ctx context.Context, accountID string) error
}
