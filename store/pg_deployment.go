package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDeploymentStore implements DeploymentStore backed by PostgreSQL.
type PGDeploymentStore struct {
	pool *pgxpool.Pool
}

func (s *PGDeploymentStore) RecordDeployment(ctx context.Context, d *Deployment) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO deployments (id, status, url, deployment_id, created_at)
		VALUES ($1,$2,$3,$4,NOW())
		RETURNING created_at`,
		d.ID, d.Status, d.URL, d.DeploymentID)
	if err := row.Scan(&d.CreatedAt); err != nil {
		return fmt.Errorf("insert deployment: %w", err)
	}
	return nil
}

func (s *PGDeploymentStore) RecordError(ctx context.Context, e *DeploymentError) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO deployment_errors (id, error, deployment_id, created_at)
		VALUES ($1,$2,$3,NOW())
		RETURNING created_at`,
		e.ID, e.Error, e.DeploymentID)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert deployment error: %w", err)
	}
	return nil
}

func (s *PGDeploymentStore) SetStatus(ctx context.Context, status, lastDeployment string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_status (id, status, last_deployment, updated_at)
		VALUES (1,$1,$2,NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			last_deployment = EXCLUDED.last_deployment,
			updated_at = NOW()`,
		status, lastDeployment)
	if err != nil {
		return fmt.Errorf("upsert app status: %w", err)
	}
	return nil
}

func (s *PGDeploymentStore) Status(ctx context.Context) (*AppStatus, error) {
	var st AppStatus
	err := s.pool.QueryRow(ctx, `
		SELECT status, last_deployment, updated_at FROM app_status WHERE id = 1`).
		Scan(&st.Status, &st.LastDeployment, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query app status: %w", err)
	}
	return &st, nil
}

func (s *PGDeploymentStore) RecentDeployments(ctx context.Context, limit int) ([]*Deployment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, status, url, deployment_id, created_at
		FROM deployments ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []*Deployment
	for rows.Next() {
		var d Deployment
		if err := rows.Scan(&d.ID, &d.Status, &d.URL, &d.DeploymentID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deployments = append(deployments, &d)
	}
	return deployments, rows.Err()
}

func (s *PGDeploymentStore) RecentErrors(ctx context.Context, limit int) ([]*DeploymentError, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, error, deployment_id, created_at
		FROM deployment_errors ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deployment errors: %w", err)
	}
	defer rows.Close()

	var errs []*DeploymentError
	for rows.Next() {
		var e DeploymentError
		if err := rows.Scan(&e.ID, &e.Error, &e.DeploymentID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment error: %w", err)
		}
		errs = append(errs, &e)
	}
	return errs, rows.Err()
}
