package handlers

import (
	"net/http"
	"time"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/session"
	"honeypot-lab/pkg/logger"
)

// statsCacheTTL keeps redis reads cheap without making the numbers stale
const statsCacheTTL = 30 * time.Second

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	config   config.Config
	sessions *session.Store
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(cfg config.Config, store *session.Store, c *cache.RedisCache, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		config:   cfg,
		sessions: store,
		cache:    c,
		logger:   log.WithComponent("stats"),
	}
}

// Stats is the stats response body
type Stats struct {
	ActiveSessions int    `json:"activeSessions"`
	MaxTurns       int    `json:"maxTurns"`
	APIVersion     string `json:"apiVersion"`
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	if h.cache != nil {
		if err := h.cache.GetJSON(r.Context(), cache.KeyStats, &stats); err == nil {
			respondJSON(w, http.StatusOK, stats)
			return
		}
	}

	stats = Stats{
		ActiveSessions: h.sessions.Count(),
		MaxTurns:       h.config.Session.MaxTurns,
		APIVersion:     h.config.App.Version,
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), cache.KeyStats, stats, statsCacheTTL); err != nil {
			h.logger.Debug().Err(err).Msg("failed to cache stats")
		}
	}

	respondJSON(w, http.StatusOK, stats)
}
