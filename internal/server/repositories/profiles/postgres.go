// Package profiles provides a PostgreSQL-backed repository for the security
// profiles attached to accounts.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/dbx"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores p. A second profile for the same account yields
// common.ErrorAlreadyExists and a missing account common.ErrorNotFound.
func (r *PostgresRepository) Insert(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO user_profiles (id, full_name, security_question, security_answer_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.FullName, p.SecurityQuestion, p.SecurityAnswerHash).Scan(&p.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return common.ErrorAlreadyExists
			case foreignKeyViolation:
				return common.ErrorNotFound
			}
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// GetByEmail looks the profile up through the owning account's email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query :=
		`SELECT p.id, p.full_name, p.security_question, p.security_answer_hash, p.last_login, p.created_at
		 FROM user_profiles p
		 JOIN accounts a ON a.id = p.id
		 WHERE a.email = $1
		 `

	p := &models.Profile{}
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&p.ID, &p.FullName, &p.SecurityQuestion, &p.SecurityAnswerHash, &lastLogin, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLogin = &t
	}
	return p, nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE user_profiles SET last_login = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
