package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/client/repositories/metadata"
)

const sessionKey = "session"

// SessionCache persists the current session between CLI runs.
type SessionCache interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// MetadataSessionCache keeps the session as a JSON document under one
// metadata key.
type MetadataSessionCache struct {
	repo metadata.Repository
}

func NewMetadataSessionCache(repo metadata.Repository) *MetadataSessionCache {
	return &MetadataSessionCache{repo: repo}
}

// Load returns (nil, nil) when nothing is stored. A stored session without
// an identity is treated as absent.
func (c *MetadataSessionCache) Load(ctx context.Context) (*models.Session, error) {
	raw, err := c.repo.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	s := &models.Session{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Identity == nil || s.AccessToken == "" {
		return nil, nil
	}
	return s, nil
}

func (c *MetadataSessionCache) Save(ctx context.Context, s *models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return c.repo.Set(ctx, sessionKey, raw)
}

func (c *MetadataSessionCache) Clear(ctx context.Context) error {
	return c.repo.Delete(ctx, sessionKey)
}
