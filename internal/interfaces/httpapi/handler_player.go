package httpapi

import (
	"net/http"
	"strings"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type searchPlayersQuery struct {
	Query  string `validate:"required,min=2,max=64"`
	Season string `validate:"omitempty,len=7"`
	Limit  int    `validate:"min=1,max=50"`
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SearchPlayers")
	defer span.End()

	limit, err := queryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := searchPlayersQuery{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Season: strings.TrimSpace(r.URL.Query().Get("season")),
		Limit:  min(limit, maxSearchLimit),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	players, err := h.playerService.Search(ctx, query.Query, query.Season, query.Limit)
	if err != nil {
		h.logFailure(ctx, "search players failed", err, "query", query.Query)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	p, err := h.playerService.Get(ctx, playerID, r.URL.Query().Get("season"))
	if err != nil {
		h.logFailure(ctx, "get player failed", err, "player_id", playerID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}
