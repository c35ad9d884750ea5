package profiles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, p *models.Profile) error
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
