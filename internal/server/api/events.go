package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// MaxEventsLimit caps the ?limit= query parameter.
const MaxEventsLimit = 500

// EventsHandler serves the gesture journal.
//
// Routes:
//   - GET    /api/events?limit=N   newest events first
//   - DELETE /api/events           clear the journal
//   - GET    /api/events/stats     event count per gesture
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID        string `json:"id"`
	Gesture   string `json:"gesture"`
	Value     bool   `json:"value"`
	Frame     int64  `json:"frame"`
	CreatedAt string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type deleteEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

func toEventResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Gesture:   e.Gesture,
		Value:     e.Value,
		Frame:     e.Frame,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.deleteAll(w)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "stats":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stats(w)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// list handles GET /api/events.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventsLimit)
	}

	events, err := h.store.Events().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// stats handles GET /api/events/stats.
func (h *EventsHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count events")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	writeJSON(w, http.StatusOK, statsResponse{Counts: counts, Total: total})
}

// deleteAll handles DELETE /api/events.
func (h *EventsHandler) deleteAll(w http.ResponseWriter) {
	n, err := h.store.Events().DeleteAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete events")
		return
	}
	writeJSON(w, http.StatusOK, deleteEventsResponse{Deleted: n})
}
