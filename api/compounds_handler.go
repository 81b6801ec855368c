package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tntchem/devhub/store"
)

// CompoundHandler serves the compound list and the save/seed endpoints.
type CompoundHandler struct {
	compounds store.CompoundStore
	logger    *slog.Logger
}

// NewCompoundHandler creates a new CompoundHandler.
func NewCompoundHandler(compounds store.CompoundStore, logger *slog.Logger) *CompoundHandler {
	return &CompoundHandler{compounds: compounds, logger: logger}
}

// List handles GET /api/compounds. Authentication happens in middleware, so
// an unauthenticated request is rejected before any query runs. The full set
// is returned; filtering is applied client-side.
func (h *CompoundHandler) List(w http.ResponseWriter, r *http.Request) {
	compounds, err := h.compounds.ListRecent(r.Context())
	if err != nil {
		h.logger.Error("list compounds failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if compounds == nil {
		compounds = []*store.Compound{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"compounds": compounds})
}

// Save handles POST /api/compounds. The write is two independent steps with
// no transaction between them: the compound upsert keyed by name, then one
// property upsert per present attribute. If the property step fails, the
// already-written compound row is left with stale property rows; nothing
// reconciles it. The recent-compounds view is refreshed after both steps.
func (h *CompoundHandler) Save(w http.ResponseWriter, r *http.Request) {
	var form store.CompoundForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.save(w, r, form)
}

// Seed handles POST /api/compounds/seed: a one-click insert of the
// well-known P4-t-Bu record, through the same two-step write as Save.
func (h *CompoundHandler) Seed(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, store.SeedForm())
}

func (h *CompoundHandler) save(w http.ResponseWriter, r *http.Request, form store.CompoundForm) {
	compound, err := form.Normalize()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.compounds.Upsert(r.Context(), compound); err != nil {
		h.logger.Error("upsert compound failed", "name", compound.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	props := compound.Properties.Rows(compound.ID)
	if err := h.compounds.UpsertProperties(r.Context(), compound.ID, props); err != nil {
		// Partial-failure window: the compound row is written, its property
		// rows are stale relative to the submitted form.
		h.logger.Error("write properties failed", "name", compound.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.compounds.RefreshRecent(r.Context()); err != nil {
		h.logger.Error("refresh recent compounds failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if user := UserFromContext(r.Context()); user != nil {
		h.logger.Info("compound saved", "name", compound.Name, "user", user.Email)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"compound": compound})
}
