// Package lockout counts failed security-answer attempts per email and
// locks the email once the failures in a window reach the limit.
package lockout

import (
	"context"
	"strings"
	"time"
)

// Policy is the failure limit, the window it is counted in and how long a
// lock lasts.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	LockFor     time.Duration
}

// DefaultPolicy is five failures within 15 minutes, locking for 15 minutes.
var DefaultPolicy = Policy{MaxAttempts: 5, Window: 15 * time.Minute, LockFor: 15 * time.Minute}

type Store interface {
	// Locked reports whether key is currently locked.
	Locked(ctx context.Context, key string) (bool, error)
	// RecordFailure counts a failure and reports whether it locked key.
	RecordFailure(ctx context.Context, key string) (bool, error)
	// Reset clears the failure count and any lock of key.
	Reset(ctx context.Context, key string) error
}

// Key normalizes an email into a lockout key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
