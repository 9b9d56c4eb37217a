package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/usecase"
)

type boardPropRequest struct {
	PlayerID string   `json:"player_id" validate:"required,numeric,max=12"`
	Stat     string   `json:"stat" validate:"required,max=32"`
	Line     *float64 `json:"line" validate:"omitempty,gte=0"`
	Season   string   `json:"season" validate:"omitempty,len=7"`
	Opponent string   `json:"opponent" validate:"omitempty,alpha,max=4"`
}

type boardRequest struct {
	Season string             `json:"season" validate:"omitempty,len=7"`
	Props  []boardPropRequest `json:"props" validate:"required,min=1,max=50,dive"`
}

func (h *Handler) AnalyzePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "AnalyzePlayer")
	defer span.End()

	query := r.URL.Query()
	stat := strings.TrimSpace(query.Get("stat"))
	if stat == "" {
		writeError(ctx, w, fmt.Errorf("%w: stat is required", usecase.ErrInvalidInput))
		return
	}

	var linePtr *float64
	if raw := strings.TrimSpace(query.Get("line")); raw != "" {
		line, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: line must be a number", usecase.ErrInvalidInput))
			return
		}
		linePtr = &line
	}
	line, err := resolveLine(stat, linePtr)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := usecase.AnalysisRequest{
		PlayerID: r.PathValue("playerID"),
		Stat:     analytics.StatType(stat),
		Line:     line,
		Season:   query.Get("season"),
		Opponent: query.Get("opponent"),
	}
	result, err := h.analysisService.Analyze(ctx, req)
	if err != nil {
		h.logFailure(ctx, "analyze player failed", err,
			"player_id", req.PlayerID,
			"stat", stat,
			"line", line,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysisToDTO(result))
}

// AnalyzeBoard grades a batch of props. Item failures are reported inline
// and do not fail the request.
func (h *Handler) AnalyzeBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "AnalyzeBoard")
	defer span.End()

	var body boardRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, body); err != nil {
		writeError(ctx, w, err)
		return
	}

	reqs := make([]usecase.AnalysisRequest, 0, len(body.Props))
	for i, prop := range body.Props {
		line, err := resolveLine(prop.Stat, prop.Line)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("props[%d]: %w", i, err))
			return
		}
		season := prop.Season
		if season == "" {
			season = body.Season
		}
		reqs = append(reqs, usecase.AnalysisRequest{
			PlayerID: prop.PlayerID,
			Stat:     analytics.StatType(prop.Stat),
			Line:     line,
			Season:   season,
			Opponent: prop.Opponent,
		})
	}

	items, err := h.analysisService.AnalyzeBoard(ctx, reqs)
	if err != nil {
		h.logFailure(ctx, "analyze board failed", err, "props", len(reqs))
		writeError(ctx, w, err)
		return
	}

	board := boardToDTO(items)
	if board.Failed > 0 {
		h.logger.InfoContext(ctx, "board analyzed with failures",
			"props", len(reqs),
			"failed", board.Failed,
			"request_id", requestIDFromContext(ctx),
		)
	}
	writeSuccess(ctx, w, http.StatusOK, board)
}
