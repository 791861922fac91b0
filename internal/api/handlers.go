package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/laguz/internal/catalog"
	"github.com/starford/laguz/internal/mapping"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/pipeline"
)

// Runner is the pipeline surface the API needs.
type Runner interface {
	RunPass() models.PassSummary
	LastSummary() (models.PassSummary, bool)
}

var _ Runner = (*pipeline.Pipeline)(nil)

// Handler holds API route handlers.
type Handler struct {
	runner Runner
	store  *mapping.Store
	cat    catalog.Store
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(runner Runner, store *mapping.Store, cat catalog.Store, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, store: store, cat: cat, logger: logger}
}

// Status handles GET /api/status. It reports the most recent pass summary,
// or ran=false when no pass has completed yet.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.runner.LastSummary()
	resp := StatusResponse{Ran: ok}
	if ok {
		resp.Summary = &summary
	}
	writeJSON(w, http.StatusOK, resp)
}

// Mappings handles GET /api/mappings. It returns every recorded raw to
// canonical pair, sorted by raw path.
func (h *Handler) Mappings(w http.ResponseWriter, r *http.Request) {
	pairs := h.store.Snapshot()
	writeJSON(w, http.StatusOK, MappingsResponse{Mappings: pairs, Total: len(pairs)})
}

// Unresolved handles GET /api/unresolved. It returns link targets that no
// pass has been able to resolve, with the file each was found in.
func (h *Handler) Unresolved(w http.ResponseWriter, r *http.Request) {
	links, err := h.cat.Unresolved()
	if err != nil {
		h.logger.Error("unresolved query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("query failed"))
		return
	}
	if links == nil {
		links = []models.UnresolvedLink{}
	}
	writeJSON(w, http.StatusOK, UnresolvedResponse{Links: links, Total: len(links)})
}

// TriggerPass handles POST /api/passes. It runs a normalization pass
// synchronously and returns its summary.
func (h *Handler) TriggerPass(w http.ResponseWriter, r *http.Request) {
	summary := h.runner.RunPass()
	writeJSON(w, http.StatusOK, PassResponse{Summary: summary})
}
