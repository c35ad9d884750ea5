package accounts

import (
	"context"

	"github.com/dmitrijs2005/resourcehub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	SetAvatarKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}
