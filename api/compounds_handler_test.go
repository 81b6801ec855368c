package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tntchem/devhub/store"
)

// countingCompoundStore wraps a CompoundStore and counts reads.
type countingCompoundStore struct {
	store.CompoundStore
	listCalls atomic.Int64
}

func (s *countingCompoundStore) ListRecent(ctx context.Context) ([]*store.Compound, error) {
	s.listCalls.Add(1)
	return s.CompoundStore.ListRecent(ctx)
}

// flakyCompoundStore injects failures into individual write steps.
type flakyCompoundStore struct {
	store.CompoundStore
	failUpsert     bool
	failProperties bool
}

func (s *flakyCompoundStore) Upsert(ctx context.Context, c *store.Compound) error {
	if s.failUpsert {
		return errors.New("connection reset")
	}
	return s.CompoundStore.Upsert(ctx, c)
}

func (s *flakyCompoundStore) UpsertProperties(ctx context.Context, id uuid.UUID, props []store.CompoundProperty) error {
	if s.failProperties {
		return errors.New("connection reset")
	}
	return s.CompoundStore.UpsertProperties(ctx, id, props)
}

func saveJSON(t *testing.T, h *CompoundHandler, form store.CompoundForm) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(form)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/compounds", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Save(rec, req)
	return rec
}

func TestSaveWritesCompoundPropertiesAndRefreshes(t *testing.T) {
	compounds := store.NewMockCompoundStore()
	h := NewCompoundHandler(compounds, testLogger())

	rec := saveJSON(t, h, store.CompoundForm{Name: "TBD", PKa: "26", Energy: "1.2"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Compound *store.Compound `json:"compound"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Compound)

	rows := compounds.PropertyRows(resp.Compound.ID)
	assert.Equal(t, 26.0, rows[store.AttrPKa])
	assert.Equal(t, 1.2, rows[store.AttrEnergyEV])
	assert.Equal(t, true, rows[store.AttrIsSuperbase])
	assert.NotContains(t, rows, store.AttrGeometry)

	assert.Equal(t, 1, compounds.Refreshes())
}

func TestSaveRejectsMissingName(t *testing.T) {
	compounds := store.NewMockCompoundStore()
	h := NewCompoundHandler(compounds, testLogger())

	rec := saveJSON(t, h, store.CompoundForm{PKa: "10"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, compounds.Refreshes())
}

func TestSaveUpsertFailureWritesNothing(t *testing.T) {
	mock := store.NewMockCompoundStore()
	flaky := &flakyCompoundStore{CompoundStore: mock, failUpsert: true}
	h := NewCompoundHandler(flaky, testLogger())

	rec := saveJSON(t, h, store.CompoundForm{Name: "DBU"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, mock.Refreshes())
}

func TestSavePropertyFailureLeavesCompoundRow(t *testing.T) {
	mock := store.NewMockCompoundStore()
	flaky := &flakyCompoundStore{CompoundStore: mock, failProperties: true}
	h := NewCompoundHandler(flaky, testLogger())

	rec := saveJSON(t, h, store.CompoundForm{Name: "DBU", PKa: "24"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// The two write steps are not transactional: the compound row landed,
	// the view was never refreshed.
	require.NoError(t, mock.RefreshRecent(context.Background()))
	list, err := mock.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "DBU", list[0].Name)
	assert.Equal(t, 1, mock.Refreshes())
}

func TestSeedInsertsWellKnownRecord(t *testing.T) {
	compounds := store.NewMockCompoundStore()
	h := NewCompoundHandler(compounds, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/compounds/seed", nil)
	rec := httptest.NewRecorder()
	h.Seed(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	list, err := compounds.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, store.SeedCompoundName, list[0].Name)

	rows := compounds.PropertyRows(list[0].ID)
	assert.Len(t, rows, 4)
	assert.Equal(t, true, rows[store.AttrIsSuperbase])
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	h := NewCompoundHandler(store.NewMockCompoundStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/compounds", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"compounds":[]}`, rec.Body.String())
}

func TestCompoundRoutesRequireSession(t *testing.T) {
	compounds := &countingCompoundStore{CompoundStore: store.NewMockCompoundStore()}
	handler, mw := NewRouter(Stores{
		Compounds:   compounds,
		Deployments: store.NewMockDeploymentStore(),
		Users:       store.NewMockUserStore(),
		Sessions:    store.NewMockSessionStore(),
	}, Config{LinkSecret: []byte("test-secret")})
	defer mw.Stop()

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/compounds"},
		{http.MethodPost, "/api/compounds"},
		{http.MethodPost, "/api/compounds/seed"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())
	}

	// Rejection happens before any query runs.
	assert.Equal(t, int64(0), compounds.listCalls.Load())
}

func TestCompoundRoutesAcceptBearerToken(t *testing.T) {
	sessions := store.NewMockSessionStore()
	users := store.NewMockUserStore()
	compounds := store.NewMockCompoundStore()
	handler, mw := NewRouter(Stores{
		Compounds:   compounds,
		Deployments: store.NewMockDeploymentStore(),
		Users:       users,
		Sessions:    sessions,
	}, Config{LinkSecret: []byte("test-secret")})
	defer mw.Stop()

	user := &store.User{ID: uuid.New(), Email: "dev@example.com", Active: true}
	require.NoError(t, users.Create(context.Background(), user))

	req := httptest.NewRequest(http.MethodGet, "/api/compounds", nil)
	sess, err := issueSession(context.Background(), sessions, httptest.NewRecorder(), user.ID, req, time.Hour)
	require.NoError(t, err)

	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSaveLogsActingUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sessions := store.NewMockSessionStore()
	users := store.NewMockUserStore()
	handler, mw := NewRouter(Stores{
		Compounds:   store.NewMockCompoundStore(),
		Deployments: store.NewMockDeploymentStore(),
		Users:       users,
		Sessions:    sessions,
	}, Config{LinkSecret: []byte("test-secret"), Logger: logger})
	defer mw.Stop()

	user := &store.User{ID: uuid.New(), Email: "dev@example.com", Active: true}
	require.NoError(t, users.Create(context.Background(), user))

	req := httptest.NewRequest(http.MethodPost, "/api/compounds",
		strings.NewReader(`{"name":"DBU","pKa":"24"}`))
	sess, err := issueSession(context.Background(), sessions, httptest.NewRecorder(), user.ID, req, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, buf.String(), "compound saved")
	assert.Contains(t, buf.String(), "dev@example.com")
}
