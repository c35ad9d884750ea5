// Package timeouts centralizes the time budgets used by the client and server.
package timeouts

import "time"

const (
	// Call bounds every orchestrated request to the identity service.
	Call = 15 * time.Second
	// SessionInit bounds the one-shot persisted-session lookup at startup.
	SessionInit = 5 * time.Second
	// RefreshLead is how long before expiry the client rotates its session.
	RefreshLead = 30 * time.Second
	// RefreshCheck is the polling interval of the auto-refresh loop.
	RefreshCheck = 10 * time.Second
	// Shutdown bounds graceful server shutdown.
	Shutdown = 10 * time.Second
	// ReadHeader bounds header reads on the ops HTTP server.
	ReadHeader = 5 * time.Second
)
