package rest

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/nyx/internal/cache"
	"github.com/fortuna/nyx/internal/scheduler"
	"github.com/fortuna/nyx/internal/service"
	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/store/repository"
	"github.com/fortuna/nyx/internal/window"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db       *store.Database
	cache    *cache.RedisCache
	nightSvc *service.NightService
	orch     *scheduler.Orchestrator
}

// NewHandler creates a new handler. The cache may be nil when Redis is
// unavailable; night snapshots are then built fresh on every request.
func NewHandler(db *store.Database, rc *cache.RedisCache, orch *scheduler.Orchestrator) *Handler {
	return &Handler{
		db:       db,
		cache:    rc,
		nightSvc: service.NewNightService(db),
		orch:     orch,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	postgres := "up"
	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
		postgres = "down"
	}

	redisState := "disabled"
	if h.cache != nil {
		redisState = "up"
		if err := h.cache.HealthCheck(ctx); err != nil {
			status = "degraded"
			redisState = "down"
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"service":  "nyx",
		"version":  "1.0.0",
		"postgres": postgres,
		"redis":    redisState,
	})
}

// GetNight returns the full snapshot for one night window: slate, playing
// teams and their current injuries
func (h *Handler) GetNight(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = window.Today()
	}

	if _, err := window.Compute(date); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	key := cache.NightKey(date)
	if h.cache != nil {
		cached, err := h.cache.Get(r.Context(), key)
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
		if !cache.IsMiss(err) {
			log.Printf("⚠️ [rest] night cache read failed: %v", err)
		}
	}

	snapshot, err := h.nightSvc.SnapshotFor(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build night snapshot", err)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			if err := h.cache.Set(r.Context(), key, data, cache.DefaultNightTTL); err != nil {
				log.Printf("⚠️ [rest] night cache write failed: %v", err)
			}
		}
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetGames returns the slate for one night window
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = window.Today()
	}

	win, err := window.Compute(date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	games, err := h.nightSvc.GamesIn(r.Context(), win)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date,
		"window": win,
		"games":  games,
		"count":  len(games),
	})
}

// GetInjuries returns current injuries for every team playing in one
// night window
func (h *Handler) GetInjuries(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = window.Today()
	}

	win, err := window.Compute(date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	teamIDs, err := h.nightSvc.TeamsPlayingIn(r.Context(), win)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch playing teams", err)
		return
	}

	injuries, err := h.nightSvc.InjuriesFor(r.Context(), teamIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injuries", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":     date,
		"window":   win,
		"injuries": injuries,
		"count":    len(injuries),
	})
}

// GetTeams returns all teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teamRepo := repository.NewTeamRepository(h.db)
	teams, err := teamRepo.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// GetInjuryHistory returns recent injury transitions for one team,
// addressed by tricode or numeric ID
func (h *Handler) GetInjuryHistory(w http.ResponseWriter, r *http.Request) {
	teamParam := r.URL.Query().Get("team")
	if teamParam == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'team'", nil)
		return
	}

	teamID, err := strconv.Atoi(teamParam)
	if err != nil {
		teamRepo := repository.NewTeamRepository(h.db)
		team, err := teamRepo.GetByTricode(r.Context(), strings.ToUpper(teamParam))
		if err != nil {
			respondError(w, http.StatusNotFound, "Team not found", err)
			return
		}
		teamID = team.ID
	}

	limit := 50 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	injuryRepo := repository.NewInjuryRepository(h.db)
	events, err := injuryRepo.HistoryForTeam(r.Context(), teamID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch injury history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"events":  events,
		"count":   len(events),
	})
}

// TriggerInjurySync runs one ESPN injury sync pass on demand
func (h *Handler) TriggerInjurySync(w http.ResponseWriter, r *http.Request) {
	result, err := h.orch.TriggerInjurySync(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to sync injuries", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Injury sync completed",
		"result":  result,
	})
}

// TriggerScheduleImport runs one league schedule import on demand
func (h *Handler) TriggerScheduleImport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orch.TriggerScheduleImport(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to import schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Schedule import completed",
		"summary": summary,
	})
}

// GetStatus returns scheduler and sync pipeline status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orch.GetStatus())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
