package handlers

import (
	"encoding/json"
	"net/http"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/session"
	"honeypot-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler
	Session  *SessionHandler
	Stats    *StatsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Config   config.Config
	Engine   *services.Engine
	Sessions *session.Store
	Cache    *cache.RedisCache
	DB       *database.PostgresDB
	Logger   *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Config.App, deps.Cache, deps.DB, deps.Logger),
		Honeypot: NewHoneypotHandler(deps.Engine, deps.Logger),
		Session:  NewSessionHandler(deps.Sessions, deps.Logger),
		Stats:    NewStatsHandler(deps.Config, deps.Sessions, deps.Cache, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
