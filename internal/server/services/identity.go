// Package services contains server-side business logic. This file implements
// IdentityService, which handles account creation and rollback, sign-in and
// issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/cryptox"
	"github.com/dmitrijs2005/resourcehub/internal/dbx"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/auth"
	"github.com/dmitrijs2005/resourcehub/internal/server/config"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/resourcehub/internal/validation"
	"github.com/go-playground/validator/v10"
)

// Session is a signed-in account with its freshly issued tokens.
type Session struct {
	Account *models.Account
	Tokens  *models.TokenPair
}

type newAccount struct {
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

var newAccountMessages = map[string]string{
	"Email":    "invalid email address",
	"Password": fmt.Sprintf("password must be at least %d characters", common.MinPasswordLength),
}

// dummyHash is compared against when the email is unknown, so sign-in
// takes the same time either way.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := cryptox.HashPassword([]byte("resourcehub-dummy-password"))
	return h
})

type IdentityService struct {
	db                             *sql.DB
	repomanager                    repomanager.RepositoryManager
	validate                       *validator.Validate
	jwtSecret                      []byte
	accessTokenValidityDuration    time.Duration
	refreshTokenValidityDuration   time.Duration
	provisionTokenValidityDuration time.Duration
	logger                         logging.Logger
	now                            func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *IdentityService {
	return &IdentityService{
		db:                             db,
		repomanager:                    m,
		validate:                       validation.New(),
		jwtSecret:                      []byte(cfg.SecretKey),
		accessTokenValidityDuration:    cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:   cfg.RefreshTokenValidityDuration,
		provisionTokenValidityDuration: cfg.ProvisioningTokenValidityDuration,
		logger:                         l.With("module", "identity_service"),
		now:                            time.Now,
	}
}

// CreateAccount registers email with a bcrypt hash of password and returns
// the account together with a provisioning token for it.
func (s *IdentityService) CreateAccount(ctx context.Context, email, password string, meta map[string]string) (*models.Account, string, error) {
	in := newAccount{Email: normalizeEmail(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, "", validationError(err, newAccountMessages)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(meta["full_name"]),
	})
	if err != nil {
		return nil, "", err
	}

	token, _, err := auth.GenerateToken(account.ID, auth.ScopeProvision, s.jwtSecret, s.provisionTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return account, token, nil
}

// DeleteAccount removes the account; its profile and refresh tokens go
// with it.
func (s *IdentityService) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.repomanager.Accounts(s.db).Delete(ctx, accountID); err != nil {
		return err
	}
	s.logger.Info(ctx, "account deleted", "account_id", accountID)
	return nil
}

// SignIn verifies the password. An unknown email and a wrong password both
// yield common.ErrInvalidCredentials.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = cryptox.ComparePassword(dummyHash(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.ComparePassword(account.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, account.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{Account: account, Tokens: pair}, nil
}

// RefreshSession validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired and
// unknown ones ErrInvalidToken.
func (s *IdentityService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}

	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*Session, error) {
		repoTx := s.repomanager.RefreshTokens(tx)

		token, err := repoTx.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return nil, common.ErrRefreshTokenExpired
		}

		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}

		account, err := s.repomanager.Accounts(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, err
		}

		pair, err := s.generateTokenPair(ctx, account.ID, tx)
		if err != nil {
			return nil, err
		}
		return &Session{Account: account, Tokens: pair}, nil
	})
}

// SignOut revokes refreshToken. Unknown tokens are ignored.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

func (s *IdentityService) GetIdentity(ctx context.Context, accountID string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
}

// --- helpers below ---

func (s *IdentityService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, accountID string, tx dbx.DBTX) (*models.TokenPair, error) {
	access, expires, err := auth.GenerateToken(accountID, auth.ScopeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, accountID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validationError turns the first failed rule of err into a
// common.ErrorValidation carrying a readable message.
func validationError(err error, messages map[string]string) error {
	field, _, ok := validation.FirstFailure(err)
	if !ok {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	msg, found := messages[field]
	if !found {
		msg = "invalid " + strings.ToLower(field)
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}
