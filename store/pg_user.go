package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGUserStore implements UserStore backed by PostgreSQL.
type PGUserStore struct {
	pool *pgxpool.Pool
}

func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, oauth_provider, oauth_id, active, created_at, updated_at, last_login_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW(),$7)`,
		u.ID, u.Email, u.DisplayName, u.OAuthProvider, u.OAuthID, u.Active, u.LastLoginAt)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: user with email %s", ErrDuplicate, u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, email, display_name, oauth_provider, oauth_id, active, created_at, updated_at, last_login_at`

func (s *PGUserStore) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PGUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PGUserStore) GetByOAuth(ctx context.Context, provider OAuthProvider, oauthID string) (*User, error) {
	return s.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE oauth_provider = $1 AND oauth_id = $2`, provider, oauthID)
}

func (s *PGUserStore) Update(ctx context.Context, u *User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET email=$2, display_name=$3, oauth_provider=$4, oauth_id=$5,
			active=$6, updated_at=NOW(), last_login_at=$7
		WHERE id=$1`,
		u.ID, u.Email, u.DisplayName, u.OAuthProvider, u.OAuthID, u.Active, u.LastLoginAt)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: user email %s", ErrDuplicate, u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGUserStore) scanOne(ctx context.Context, query string, args ...any) (*User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query user: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanUser(rows)
}

func scanUser(rows pgx.Rows) (*User, error) {
	var u User
	err := rows.Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.OAuthProvider, &u.OAuthID,
		&u.Active, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
