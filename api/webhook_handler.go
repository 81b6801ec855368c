package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tntchem/devhub/store"
)

// Webhook event types sent by the deployment platform.
const (
	EventDeploymentSucceeded = "deployment.succeeded"
	EventDeploymentError     = "deployment.error"
	EventDeploymentReady     = "deployment.ready"
)

// webhookEvent is the inbound deployment notification envelope.
type webhookEvent struct {
	Type    string `json:"type"`
	Payload struct {
		ID    string `json:"id"`
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"payload"`
}

// WebhookHandler ingests deployment lifecycle notifications. There is no
// signature verification or replay protection: redelivery of the same event
// appends duplicate deployment/error rows. Only the single status row is
// written with an idempotent upsert.
type WebhookHandler struct {
	deployments store.DeploymentStore
	logger      *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(deployments store.DeploymentStore, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{deployments: deployments, logger: logger}
}

// Receive handles POST /api/webhooks. Every request with a parseable body is
// acknowledged, whether or not the type is recognized; only a parse failure
// or a store write failure yields a 500.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var ev webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("webhook received", "type", ev.Type, "deployment_id", ev.Payload.ID)
	webhookEvents.WithLabelValues(ev.Type).Inc()

	var err error
	switch ev.Type {
	case EventDeploymentSucceeded:
		err = h.deployments.RecordDeployment(r.Context(), &store.Deployment{
			Status:       "success",
			URL:          ev.Payload.URL,
			DeploymentID: ev.Payload.ID,
		})
	case EventDeploymentError:
		err = h.deployments.RecordError(r.Context(), &store.DeploymentError{
			Error:        ev.Payload.Error,
			DeploymentID: ev.Payload.ID,
		})
	case EventDeploymentReady:
		err = h.deployments.SetStatus(r.Context(), "ready", ev.Payload.ID)
	default:
		// Unrecognized types are acknowledged with no database effect.
	}
	if err != nil {
		h.logger.Error("webhook write failed", "type", ev.Type, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
