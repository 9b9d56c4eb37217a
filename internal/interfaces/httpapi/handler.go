package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/riskibarqy/propstats/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	analysisService *usecase.AnalysisService
	playerService   *usecase.PlayerService
	adminService    *usecase.AdminService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	analysisService *usecase.AnalysisService,
	playerService *usecase.PlayerService,
	adminService *usecase.AdminService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		analysisService: analysisService,
		playerService:   playerService,
		adminService:    adminService,
		logger:          logger.Named("httpapi"),
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListStats lists the stat types a line can be set on.
func (h *Handler) ListStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListStats")
	defer span.End()

	stats := analytics.AllStats()
	items := make([]statTypeDTO, 0, len(stats))
	for _, stat := range stats {
		item := statTypeDTO{Name: string(stat)}
		if stat == analytics.StatDoubleDouble {
			item.Line = analytics.DoubleDoubleLine
		}
		items = append(items, item)
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSON reads a size-bounded JSON body, rejecting unknown fields.
func decodeJSON(r *http.Request, out any) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

// resolveLine applies the rule that every stat but double-double needs an
// explicit line.
func resolveLine(stat string, line *float64) (float64, error) {
	if line != nil {
		return *line, nil
	}
	parsed, err := analytics.ParseStat(stat)
	if err == nil && parsed == analytics.StatDoubleDouble {
		return analytics.DoubleDoubleLine, nil
	}
	return 0, fmt.Errorf("%w: line is required for stat %q", usecase.ErrInvalidInput, stat)
}

// logFailure keeps caller mistakes at info and everything else at warn.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", requestIDFromContext(ctx))
	if errors.Is(err, usecase.ErrInvalidInput) || errors.Is(err, usecase.ErrPlayerNotFound) {
		h.logger.InfoContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
