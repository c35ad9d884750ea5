package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/resourcehub/internal/validation"
	"github.com/go-playground/validator/v10"
)

var profileMessages = map[string]string{
	"ID":                 "invalid profile id",
	"FullName":           "full name is required",
	"SecurityQuestion":   "unknown security question",
	"SecurityAnswerHash": "security answer must be a SHA-256 hex digest",
}

// ProfileService stores the security profile created right after sign-up
// and tracks last logins.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
	logger      logging.Logger
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		validate:    validation.New(),
		logger:      l.With("module", "profile_service"),
		now:         time.Now,
	}
}

// InsertProfile validates and stores p. The question must be one of the
// fixed set and the answer a digest, never plain text.
func (s *ProfileService) InsertProfile(ctx context.Context, p *models.Profile) error {
	p.FullName = strings.TrimSpace(p.FullName)
	if err := s.validate.Struct(p); err != nil {
		return validationError(err, profileMessages)
	}

	if err := s.repomanager.Profiles(s.db).Insert(ctx, p); err != nil {
		return err
	}
	s.logger.Info(ctx, "profile stored", "account_id", p.ID)
	return nil
}

// UpdateLastLogin records a login of id at the given time; a zero time
// means now.
func (s *ProfileService) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if at.IsZero() {
		at = s.now()
	}
	return s.repomanager.Profiles(s.db).UpdateLastLogin(ctx, id, at.UTC())
}
