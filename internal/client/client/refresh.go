package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/timeouts"
)

// StartAutoRefresh checks the session every interval and rotates it once it
// is within lead of expiry. It blocks until ctx is done.
func (c *GRPCClient) StartAutoRefresh(ctx context.Context, interval, lead time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.refreshIfExpiring(ctx, lead)
		case <-ctx.Done():
			return
		}
	}
}

func (c *GRPCClient) refreshIfExpiring(ctx context.Context, lead time.Duration) {
	s := c.current(ctx)
	if s == nil || !s.ExpiresWithin(c.now(), lead) {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, timeouts.Call)
	defer cancel()

	if _, err := c.refresh(callCtx, s.AccessToken); err != nil {
		c.logger.Warn(ctx, "session refresh failed", "error", err)
		if errors.Is(err, ErrUnauthorized) {
			c.setSession(ctx, nil, models.EventSignedOut)
		}
	}
}
