package health

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
)

type handler struct {
	source interfaces.StatusSource
}

func newHandler(source interfaces.StatusSource) *handler {
	return &handler{source: source}
}

// ping handles /ping
func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

// health handles /health
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// odds returns the latest pass result with all collected records.
// GET /odds - 404 until the first pass finishes.
func (h *handler) odds(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	result, ok := h.source.Latest()
	if !ok {
		http.Error(w, `{"error": "no collection pass has finished yet"}`, http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode result: %v", err), http.StatusInternalServerError)
		return
	}
}

// status reports the collection cadence and the last pass summary.
// GET /status
func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(h.source.State()); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode state: %v", err), http.StatusInternalServerError)
		return
	}
}
