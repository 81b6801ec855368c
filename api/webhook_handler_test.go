package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tntchem/devhub/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func TestWebhookDeploymentSucceededAppendsRows(t *testing.T) {
	deployments := store.NewMockDeploymentStore()
	h := NewWebhookHandler(deployments, testLogger())

	body := `{"type":"deployment.succeeded","payload":{"id":"dep-1","url":"https://app.example"}}`
	rec := postWebhook(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Redelivery appends a second row; there is no idempotency key.
	rec = postWebhook(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, deployments.DeploymentCount())

	recent, err := deployments.RecentDeployments(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "success", recent[0].Status)
	assert.Equal(t, "dep-1", recent[0].DeploymentID)
	assert.Equal(t, "https://app.example", recent[0].URL)
}

func TestWebhookDeploymentErrorAppendsRow(t *testing.T) {
	deployments := store.NewMockDeploymentStore()
	h := NewWebhookHandler(deployments, testLogger())

	rec := postWebhook(t, h, `{"type":"deployment.error","payload":{"id":"dep-2","error":"build failed"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, deployments.ErrorCount())

	errs, err := deployments.RecentErrors(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "build failed", errs[0].Error)
	assert.Equal(t, "dep-2", errs[0].DeploymentID)
}

func TestWebhookDeploymentReadyUpsertsSingleStatusRow(t *testing.T) {
	deployments := store.NewMockDeploymentStore()
	h := NewWebhookHandler(deployments, testLogger())

	rec := postWebhook(t, h, `{"type":"deployment.ready","payload":{"id":"dep-1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postWebhook(t, h, `{"type":"deployment.ready","payload":{"id":"dep-2"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	st, err := deployments.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", st.Status)
	assert.Equal(t, "dep-2", st.LastDeployment)
	assert.Equal(t, 0, deployments.DeploymentCount())
}

func TestWebhookUnknownTypeAcknowledgedWithoutEffect(t *testing.T) {
	deployments := store.NewMockDeploymentStore()
	h := NewWebhookHandler(deployments, testLogger())

	rec := postWebhook(t, h, `{"type":"deployment.promoted","payload":{"id":"dep-9"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	assert.Equal(t, 0, deployments.DeploymentCount())
	assert.Equal(t, 0, deployments.ErrorCount())
	_, err := deployments.Status(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWebhookMalformedBodyIsServerError(t *testing.T) {
	deployments := store.NewMockDeploymentStore()
	h := NewWebhookHandler(deployments, testLogger())

	rec := postWebhook(t, h, `{"type":`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.Equal(t, 0, deployments.DeploymentCount())
}
