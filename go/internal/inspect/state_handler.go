package inspect

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gameday/go/internal/live"
)

// View is a mounted screen whose state can be inspected
type View interface {
	Name() string
	Describe() any
}

// StatsProvider reports the shared live connection statistics
type StatsProvider interface {
	Stats() live.Stats
}

// ViewSummary is one entry of the views listing
type ViewSummary struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// StateHandler serves the state of mounted views over HTTP
type StateHandler struct {
	mu    sync.RWMutex
	views map[string]View
	order []string
	stats StatsProvider
}

// NewStateHandler creates a new state handler. stats may be nil.
func NewStateHandler(stats StatsProvider) *StateHandler {
	return &StateHandler{
		views: make(map[string]View),
		stats: stats,
	}
}

// Add registers a view, replacing any view with the same name
func (h *StateHandler) Add(v View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.views[v.Name()]; !exists {
		h.order = append(h.order, v.Name())
	}
	h.views[v.Name()] = v
}

// Remove unregisters a view
func (h *StateHandler) Remove(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.views[name]; !exists {
		return
	}
	delete(h.views, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// HandleListViews handles GET /api/views
func (h *StateHandler) HandleListViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.RLock()
	views := make([]ViewSummary, 0, len(h.order))
	for _, name := range h.order {
		views = append(views, ViewSummary{Name: name, Path: "/api/views/" + name})
	}
	h.mu.RUnlock()

	writeJSON(w, views)
}

// HandleGetView handles GET /api/views/{name}
func (h *StateHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/views/")
	if name == "" {
		http.Error(w, "View name is required", http.StatusBadRequest)
		return
	}

	h.mu.RLock()
	view, ok := h.views[name]
	h.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, view.Describe())
}

// HandleLiveStats handles GET /api/live/stats
func (h *StateHandler) HandleLiveStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		http.Error(w, "Live connection not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, h.stats.Stats())
}

// RegisterRoutes registers state and operational routes. gatherer may be nil, in
// which case /metrics is not served.
func (h *StateHandler) RegisterRoutes(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.HandleFunc("/api/views", h.HandleListViews)
	mux.HandleFunc("/api/views/", h.HandleGetView)
	mux.HandleFunc("/api/live/stats", h.HandleLiveStats)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
