package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
)

// Client is the contract the auth orchestrator and session store use to talk
// to the identity service.
type Client interface {
	// CreateAccount registers email/password with the given profile metadata.
	// Besides the new identity it returns a short-lived provisioning token
	// that authorizes InsertProfile and DeleteAccount for that identity.
	CreateAccount(ctx context.Context, email, password string, meta map[string]string) (*models.Identity, string, error)
	// DeleteAccount removes the account the provisioning token was issued for.
	DeleteAccount(ctx context.Context, provisioningToken string) error
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	// SignOut ends the current session. With no session it does nothing.
	SignOut(ctx context.Context) error
	// GetSession returns the current (possibly persisted) session, or nil.
	GetSession(ctx context.Context) (*models.Session, error)
	RefreshSession(ctx context.Context) (*models.Session, error)
	// OnSessionChange registers fn for session events. Events are delivered
	// in order from a single goroutine.
	OnSessionChange(fn func(models.SessionEvent)) Subscription
	// Call invokes a named remote procedure and returns its decoded result
	// (nil, bool, float64, string, []any or map[string]any).
	Call(ctx context.Context, name string, args map[string]any) (any, error)
	// InsertProfile writes the credential profile. An empty token means the
	// current session's access token.
	InsertProfile(ctx context.Context, token string, p *models.Profile) error
	UpdateLastLogin(ctx context.Context, identityID string, at time.Time) error
	Close() error
}

// Subscription is a handle returned by OnSessionChange.
type Subscription interface {
	Unsubscribe()
}
