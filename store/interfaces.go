package store

import (
	"context"

	"github.com/google/uuid"
)

// CompoundStore defines persistence operations for compounds and their
// derived property rows.
type CompoundStore interface {
	// Upsert inserts or updates a compound keyed by name and fills in its
	// generated ID and timestamps.
	Upsert(ctx context.Context, c *Compound) error
	// UpsertProperties writes one row per present attribute, keyed by
	// (compound_id, attribute). Rows for attributes omitted from a later save
	// are left in place, not deleted.
	UpsertProperties(ctx context.Context, compoundID uuid.UUID, props []CompoundProperty) error
	// ListRecent returns every row from the recent-compounds view. No query
	// parameters are applied server-side; filtering is the caller's job.
	ListRecent(ctx context.Context) ([]*Compound, error)
	// RefreshRecent refreshes the recent-compounds view. The view does not
	// update on write; callers invoke this after every save.
	RefreshRecent(ctx context.Context) error
}

// DeploymentStore defines persistence for deployment lifecycle records.
type DeploymentStore interface {
	// RecordDeployment appends a deployment row.
	RecordDeployment(ctx context.Context, d *Deployment) error
	// RecordError appends a deployment error row.
	RecordError(ctx context.Context, e *DeploymentError) error
	// SetStatus upserts the single fixed-id status row.
	SetStatus(ctx context.Context, status, lastDeployment string) error
	// Status returns the status row, or ErrNotFound if none exists yet.
	Status(ctx context.Context) (*AppStatus, error)
	// RecentDeployments returns up to limit deployments, newest first.
	RecentDeployments(ctx context.Context, limit int) ([]*Deployment, error)
	// RecentErrors returns up to limit deployment errors, newest first.
	RecentErrors(ctx context.Context, limit int) ([]*DeploymentError, error)
}

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByOAuth(ctx context.Context, provider OAuthProvider, oauthID string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// SessionStore defines persistence operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	// GetByToken returns the session for a token regardless of its active or
	// expiry state; callers decide whether it is still usable.
	GetByToken(ctx context.Context, token string) (*Session, error)
	// Revoke marks the session for the given token inactive.
	Revoke(ctx context.Context, token string) error
}
