package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/cryptox"
	"github.com/dmitrijs2005/resourcehub/internal/dbx"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/lockout"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
)

// RecoveryService resets forgotten passwords through the security
// question. Failed answers are counted per email in a lockout.Store.
type RecoveryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	lockout     lockout.Store
	onLockout   func()
	logger      logging.Logger
}

type RecoveryOption func(*RecoveryService)

// WithLockoutObserver registers fn to run whenever an email gets locked.
func WithLockoutObserver(fn func()) RecoveryOption {
	return func(s *RecoveryService) { s.onLockout = fn }
}

func NewRecoveryService(db *sql.DB, m repomanager.RepositoryManager, store lockout.Store, l logging.Logger, opts ...RecoveryOption) *RecoveryService {
	s := &RecoveryService{
		db:          db,
		repomanager: m,
		lockout:     store,
		onLockout:   func() {},
		logger:      l.With("module", "recovery_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSecurityQuestion returns the question stored for email, or
// common.ErrorNotFound.
func (s *RecoveryService) GetSecurityQuestion(ctx context.Context, email string) (string, error) {
	p, err := s.repomanager.Profiles(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return p.SecurityQuestion, nil
}

// VerifySecurityAnswer reports whether digest matches the stored answer.
// Unknown emails verify as false.
func (s *RecoveryService) VerifySecurityAnswer(ctx context.Context, email, digest string) (bool, error) {
	_, ok, err := s.check(ctx, email, digest)
	return ok, err
}

// ResetPasswordWithSecurity checks the answer again and, when it matches,
// replaces the password and revokes every refresh token of the account.
func (s *RecoveryService) ResetPasswordWithSecurity(ctx context.Context, email, digest, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, common.MinPasswordLength)
	}

	profile, ok, err := s.check(ctx, email, digest)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidSecurityAnswer
	}

	hash, err := cryptox.HashPassword([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).UpdatePassword(ctx, profile.ID, hash); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteAllForAccount(ctx, profile.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset via security question", "account_id", profile.ID)
	return nil
}

// check compares digest with the stored answer of email, honouring and
// updating the lockout.
func (s *RecoveryService) check(ctx context.Context, email, digest string) (*models.Profile, bool, error) {
	email = normalizeEmail(email)
	key := lockout.Key(email)

	locked, err := s.lockout.Locked(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("lockout check: %w", err)
	}
	if locked {
		return nil, false, common.ErrTooManyAttempts
	}

	profile, err := s.repomanager.Profiles(s.db).GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	if profile != nil && cryptox.CompareDigest(profile.SecurityAnswerHash, strings.ToLower(strings.TrimSpace(digest))) {
		if err := s.lockout.Reset(ctx, key); err != nil {
			s.logger.Warn(ctx, "failed to reset lockout", "error", err)
		}
		return profile, true, nil
	}

	lockedNow, err := s.lockout.RecordFailure(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("lockout record: %w", err)
	}
	if lockedNow {
		s.onLockout()
		s.logger.Warn(ctx, "email locked after failed security answers")
	}
	return nil, false, nil
}
