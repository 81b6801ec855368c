package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tntchem/devhub/store"
)

// recentLimit is how many deployments and errors the status endpoint reports.
const recentLimit = 5

// statusResponse is the read-only aggregation served by GET /api/status.
type statusResponse struct {
	Status      string                   `json:"status"`
	Deployments []*store.Deployment      `json:"deployments"`
	Errors      []*store.DeploymentError `json:"errors"`
}

// StatusHandler serves the deployment status aggregation.
type StatusHandler struct {
	deployments store.DeploymentStore
	logger      *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(deployments store.DeploymentStore, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{deployments: deployments, logger: logger}
}

// Get handles GET /api/status. Missing rows degrade to "unknown" and empty
// lists (never null); read failures are logged and degrade the same way, so
// the endpoint answers 200 whenever it can.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:      "unknown",
		Deployments: []*store.Deployment{},
		Errors:      []*store.DeploymentError{},
	}

	if st, err := h.deployments.Status(r.Context()); err == nil {
		resp.Status = st.Status
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Warn("read app status failed", "error", err)
	}

	if deployments, err := h.deployments.RecentDeployments(r.Context(), recentLimit); err == nil && deployments != nil {
		resp.Deployments = deployments
	} else if err != nil {
		h.logger.Warn("read deployments failed", "error", err)
	}

	if errs, err := h.deployments.RecentErrors(r.Context(), recentLimit); err == nil && errs != nil {
		resp.Errors = errs
	} else if err != nil {
		h.logger.Warn("read deployment errors failed", "error", err)
	}

	WriteJSON(w, http.StatusOK, resp)
}
