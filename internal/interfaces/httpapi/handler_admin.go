package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/propstats/internal/usecase"
)

type warmPlayersRequest struct {
	PlayerIDs  []string `json:"player_ids" validate:"required,min=1,max=200,dive,required,numeric"`
	Season     string   `json:"season" validate:"omitempty,len=7"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,min=1,max=16"`
	Force      bool     `json:"force"`
}

func (h *Handler) RefreshPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RefreshPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	result, err := h.adminService.RefreshPlayer(ctx, playerID, r.URL.Query().Get("season"))
	if err != nil {
		h.logFailure(ctx, "admin refresh failed", err, "player_id", playerID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) WarmPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "WarmPlayers")
	defer span.End()

	var body warmPlayersRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, body); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.adminService.WarmPlayers(ctx, usecase.WarmInput{
		PlayerIDs:  body.PlayerIDs,
		Season:     body.Season,
		MaxWorkers: body.MaxWorkers,
		Force:      body.Force,
	})
	if err != nil {
		h.logFailure(ctx, "admin warm-up failed", err, "players", len(body.PlayerIDs))
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ClearCache")
	defer span.End()

	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	result, err := h.adminService.ClearCache(ctx, playerID)
	if err != nil {
		h.logFailure(ctx, "admin clear cache failed", err, "player_id", playerID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CacheStats")
	defer span.End()

	stats, err := h.adminService.CacheStats(ctx)
	if err != nil {
		h.logFailure(ctx, "admin cache stats failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}
