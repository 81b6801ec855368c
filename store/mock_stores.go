package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// MockCompoundStore
// ---------------------------------------------------------------------------

// MockCompoundStore is an in-memory implementation of CompoundStore for
// testing. It mirrors the materialized-view semantics: ListRecent serves a
// snapshot that only changes when RefreshRecent is called.
type MockCompoundStore struct {
	mu         sync.Mutex
	compounds  map[uuid.UUID]*Compound
	byName     map[string]uuid.UUID
	properties map[uuid.UUID]map[string]any
	view       []*Compound
	refreshes  int
}

// NewMockCompoundStore creates a new MockCompoundStore.
func NewMockCompoundStore() *MockCompoundStore {
	return &MockCompoundStore{
		compounds:  make(map[uuid.UUID]*Compound),
		byName:     make(map[string]uuid.UUID),
		properties: make(map[uuid.UUID]map[string]any),
	}
}

func (s *MockCompoundStore) Upsert(_ context.Context, c *Compound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if id, ok := s.byName[c.Name]; ok {
		existing := s.compounds[id]
		c.ID = id
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.CreatedAt = now
		s.byName[c.Name] = c.ID
	}
	c.UpdatedAt = now
	cp := *c
	s.compounds[c.ID] = &cp
	return nil
}

func (s *MockCompoundStore) UpsertProperties(_ context.Context, compoundID uuid.UUID, props []CompoundProperty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.compounds[compoundID]; !ok {
		return ErrNotFound
	}
	rows := s.properties[compoundID]
	if rows == nil {
		rows = make(map[string]any)
		s.properties[compoundID] = rows
	}
	for _, p := range props {
		rows[p.Attribute] = p.Value
	}
	return nil
}

func (s *MockCompoundStore) ListRecent(_ context.Context) ([]*Compound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Compound, len(s.view))
	for i, c := range s.view {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (s *MockCompoundStore) RefreshRecent(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	s.view = s.view[:0]
	for _, c := range s.compounds {
		cp := *c
		s.view = append(s.view, &cp)
	}
	sort.Slice(s.view, func(i, j int) bool { return s.view[i].UpdatedAt.After(s.view[j].UpdatedAt) })
	return nil
}

// Refreshes reports how many times RefreshRecent has been called.
func (s *MockCompoundStore) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// PropertyRows returns the stored property rows for a compound.
func (s *MockCompoundStore) PropertyRows(compoundID uuid.UUID) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.properties[compoundID]))
	for k, v := range s.properties[compoundID] {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// MockDeploymentStore
// ---------------------------------------------------------------------------

// MockDeploymentStore is an in-memory implementation of DeploymentStore for
// testing.
type MockDeploymentStore struct {
	mu          sync.Mutex
	deployments []*Deployment
	errs        []*DeploymentError
	status      *AppStatus
}

// NewMockDeploymentStore creates a new MockDeploymentStore.
func NewMockDeploymentStore() *MockDeploymentStore {
	return &MockDeploymentStore{}
}

func (s *MockDeploymentStore) RecordDeployment(_ context.Context, d *Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	cp := *d
	s.deployments = append(s.deployments, &cp)
	return nil
}

func (s *MockDeploymentStore) RecordError(_ context.Context, e *DeploymentError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.errs = append(s.errs, &cp)
	return nil
}

func (s *MockDeploymentStore) SetStatus(_ context.Context, status, lastDeployment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &AppStatus{Status: status, LastDeployment: lastDeployment, UpdatedAt: time.Now()}
	return nil
}

func (s *MockDeploymentStore) Status(_ context.Context) (*AppStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil, ErrNotFound
	}
	cp := *s.status
	return &cp, nil
}

func (s *MockDeploymentStore) RecentDeployments(_ context.Context, limit int) ([]*Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Deployment, len(s.deployments))
	for i, d := range s.deployments {
		cp := *d
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MockDeploymentStore) RecentErrors(_ context.Context, limit int) ([]*DeploymentError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*DeploymentError, len(s.errs))
	for i, e := range s.errs {
		cp := *e
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeploymentCount reports how many deployment rows have been recorded.
func (s *MockDeploymentStore) DeploymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deployments)
}

// ErrorCount reports how many deployment error rows have been recorded.
func (s *MockDeploymentStore) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

// ---------------------------------------------------------------------------
// MockUserStore
// ---------------------------------------------------------------------------

// MockUserStore is an in-memory implementation of UserStore for testing.
type MockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

// NewMockUserStore creates a new MockUserStore.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[uuid.UUID]*User)}
}

func (s *MockUserStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MockUserStore) Get(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MockUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MockUserStore) GetByOAuth(_ context.Context, provider OAuthProvider, oauthID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OAuthProvider == provider && u.OAuthID == oauthID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MockUserStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// ---------------------------------------------------------------------------
// MockSessionStore
// ---------------------------------------------------------------------------

// MockSessionStore is an in-memory implementation of SessionStore for testing.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMockSessionStore creates a new MockSessionStore.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]*Session)}
}

func (s *MockSessionStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if _, ok := s.sessions[sess.Token]; ok {
		return ErrDuplicate
	}
	sess.CreatedAt = time.Now()
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *MockSessionStore) GetByToken(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MockSessionStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	sess.Active = false
	return nil
}
