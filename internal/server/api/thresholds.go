package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// ThresholdsSource reports the thresholds of the running classifier.
type ThresholdsSource interface {
	Thresholds() gesture.Thresholds
}

// ThresholdsHandler serves /api/thresholds.
//
// GET returns the thresholds in use. PUT validates and persists a new set in
// the settings table; it takes effect at the next start.
type ThresholdsHandler struct {
	source ThresholdsSource
	store  *store.Store
}

// NewThresholdsHandler creates a ThresholdsHandler. s may be nil, in which
// case PUT is rejected.
func NewThresholdsHandler(source ThresholdsSource, s *store.Store) *ThresholdsHandler {
	return &ThresholdsHandler{source: source, store: s}
}

type thresholdsResponse struct {
	Active gesture.Thresholds  `json:"active"`
	Saved  *gesture.Thresholds `json:"saved,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ThresholdsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ThresholdsHandler) get(w http.ResponseWriter) {
	response := thresholdsResponse{Active: h.source.Thresholds()}

	if h.store != nil {
		saved, err := h.store.Settings().LoadThresholds()
		switch {
		case err == nil:
			response.Saved = &saved
		case errors.Is(err, store.ErrNotFound):
		default:
			writeError(w, http.StatusInternalServerError, "failed to load saved thresholds")
			return
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ThresholdsHandler) put(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no settings store configured")
		return
	}

	// Fields absent from the body keep their active value
	th := h.source.Thresholds()
	if err := json.NewDecoder(r.Body).Decode(&th); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.store.Settings().SaveThresholds(th); err != nil {
		if errors.Is(err, gesture.ErrInvalidThresholds) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save thresholds")
		return
	}

	writeJSON(w, http.StatusOK, th)
}
