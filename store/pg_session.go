package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSessionStore implements SessionStore backed by PostgreSQL.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

func (s *PGSessionStore) Create(ctx context.Context, sess *Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent, active, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		sess.ID, sess.UserID, sess.Token, sess.IPAddress, sess.UserAgent, sess.Active, sess.ExpiresAt)
	if err != nil {
		if isDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token, ip_address, user_agent, active, expires_at, created_at
		FROM sessions WHERE token = $1`, token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.IPAddress, &sess.UserAgent,
			&sess.Active, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

func (s *PGSessionStore) Revoke(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE sessions SET active = FALSE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
