package nbastats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/domain/player"
	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/riskibarqy/propstats/internal/platform/resilience"
	"github.com/riskibarqy/propstats/internal/usecase"
)

const (
	defaultBaseURL      = "https://stats.nba.com/stats"
	defaultTimeout      = 12 * time.Second
	defaultRetryBackoff = time.Second
	maxResponseBytes    = 8 << 20

	leagueIDNBA       = "00"
	seasonTypeRegular = "Regular Season"
	userAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	// errTransient marks failures worth a retry that also count against the breaker.
	errTransient = crerr.New("nba stats transient failure")
	// errRejected marks 400/404 answers; the provider uses them for unknown ids.
	errRejected = crerr.New("nba stats rejected request")
	// errBudgetSpent is the cancel cause once a call used up its timeout
	// across gate waits, attempts and backoff.
	errBudgetSpent = crerr.New("nba stats call budget spent")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Gate is shared by every outbound call. Nil builds one spaced at
	// resilience.DefaultMinInterval.
	Gate *resilience.Gate
}

// Client reads game logs, the active player directory and team defensive
// ratings from the stats.nba.com JSON endpoints.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	gate         *resilience.Gate

	requests     atomic.Int64
	failures     atomic.Int64
	schemaDrifts atomic.Int64
}

var _ usecase.StatsProvider = (*Client)(nil)
var _ usecase.UpstreamStatsReporter = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	gate := cfg.Gate
	if gate == nil {
		gate = resilience.NewGate(resilience.DefaultMinInterval)
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger.Named("nbastats"),
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		gate:         gate,
	}
}

// UpstreamStats reports request counters and breaker state.
func (c *Client) UpstreamStats() usecase.UpstreamStats {
	out := usecase.UpstreamStats{
		Requests:      c.requests.Load(),
		Failures:      c.failures.Load(),
		SchemaDrifts:  c.schemaDrifts.Load(),
		CircuitState:  "disabled",
		MinIntervalMs: c.gate.Interval().Milliseconds(),
		GatePassed:    c.gate.Passed(),
	}
	if c.breaker != nil {
		snap := c.breaker.Snapshot()
		out.CircuitState = string(snap.State)
		out.CircuitTrips = snap.Trips
	}
	return out
}

// FetchGameLog returns every regular season game of the player, most recent
// first as the provider sends them.
func (c *Client) FetchGameLog(ctx context.Context, playerID, season string) ([]gamelog.GameRecord, error) {
	query := map[string]string{
		"PlayerID":   playerID,
		"Season":     season,
		"SeasonType": seasonTypeRegular,
		"LeagueID":   leagueIDNBA,
	}

	var payload envelope
	if err := c.doJSON(ctx, "/playergamelog", query, &payload); err != nil {
		if crerr.Is(err, errRejected) {
			return nil, fmt.Errorf("%w: player=%s season=%s: %v", usecase.ErrPlayerNotFound, playerID, season, err)
		}
		return nil, fmt.Errorf("fetch game log player=%s season=%s: %w", playerID, season, err)
	}

	tbl, err := c.table(ctx, payload, "PlayerGameLog", gameLogColumns...)
	if err != nil {
		return nil, fmt.Errorf("fetch game log player=%s season=%s: %w", playerID, season, err)
	}

	records := make([]gamelog.GameRecord, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		record := tbl.gameRecord(row, playerID, season)
		if err := record.Validate(); err != nil {
			c.schemaDrifts.Add(1)
			c.logger.WarnContext(ctx, "skip malformed game log row", "player_id", playerID, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// FetchPlayers returns the players rostered in the given season.
func (c *Client) FetchPlayers(ctx context.Context, season string) ([]player.Player, error) {
	query := map[string]string{
		"LeagueID":            leagueIDNBA,
		"Season":              season,
		"IsOnlyCurrentSeason": "1",
	}

	var payload envelope
	if err := c.doJSON(ctx, "/commonallplayers", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch players season=%s: %w", season, rejectedAsUnavailable(err))
	}

	tbl, err := c.table(ctx, payload, "CommonAllPlayers", playerColumns...)
	if err != nil {
		return nil, fmt.Errorf("fetch players season=%s: %w", season, err)
	}

	out := make([]player.Player, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		p := tbl.player(row)
		if err := p.Validate(); err != nil {
			c.schemaDrifts.Add(1)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// FetchDefenseRanks ranks teams by defensive rating, lowest rating first.
func (c *Client) FetchDefenseRanks(ctx context.Context, season string) (map[string]int, error) {
	query := map[string]string{
		"LeagueID":       leagueIDNBA,
		"Season":         season,
		"SeasonType":     seasonTypeRegular,
		"MeasureType":    "Advanced",
		"PerMode":        "PerGame",
		"PaceAdjust":     "N",
		"PlusMinus":      "N",
		"Rank":           "N",
		"Month":          "0",
		"OpponentTeamID": "0",
		"Period":         "0",
		"LastNGames":     "0",
	}

	var payload envelope
	if err := c.doJSON(ctx, "/leaguedashteamstats", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch defense ranks season=%s: %w", season, rejectedAsUnavailable(err))
	}

	tbl, err := c.table(ctx, payload, "LeagueDashTeamStats", defenseColumns...)
	if err != nil {
		return nil, fmt.Errorf("fetch defense ranks season=%s: %w", season, err)
	}

	ratings := make([]teamRating, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		teamID := tbl.int64At(row, "TEAM_ID")
		team, ok := teamByID[teamID]
		if !ok {
			c.schemaDrifts.Add(1)
			c.logger.WarnContext(ctx, "skip unknown team in defense ratings", "team_id", teamID)
			continue
		}
		ratings = append(ratings, teamRating{abbr: team.Abbr, rating: tbl.floatAt(row, "DEF_RATING")})
	}
	return rankByRating(ratings), nil
}

func (c *Client) table(ctx context.Context, payload envelope, name string, columns ...string) (table, error) {
	tbl, found := payload.table(name)
	if !found {
		c.schemaDrifts.Add(1)
		return table{}, fmt.Errorf("%w: %w: result set %s missing", usecase.ErrUpstreamUnavailable, usecase.ErrUpstreamSchema, name)
	}
	if missing := tbl.missing(columns...); len(missing) > 0 {
		c.schemaDrifts.Add(1)
		c.logger.WarnContext(ctx, "nba stats result set missing columns, defaulting to zero",
			"result_set", name,
			"columns", strings.Join(missing, ","),
		)
	}
	return tbl, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	// Timeout bounds the whole call, retries included.
	callCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, errBudgetSpent)
	defer cancel()

	raw, err := c.executeRequest(callCtx, fullURL)
	// Caller cancellation and rejected ids say nothing about provider health.
	c.breaker.Record(err != nil && crerr.Is(err, errTransient))
	if err != nil {
		c.failures.Add(1)
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		c.schemaDrifts.Add(1)
		return fmt.Errorf("%w: %w: decode provider payload: %v", usecase.ErrUpstreamUnavailable, usecase.ErrUpstreamSchema, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, c.interrupted(ctx, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		setProviderHeaders(req.Header)

		c.requests.Add(1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.interrupted(ctx, ctx.Err())
			}
			lastErr = classifyTransportError(err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(fmt.Errorf("%w: read response body: %v", usecase.ErrUpstreamUnavailable, readErr), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				lastErr = classifyStatus(resp.StatusCode, raw)
				if !crerr.Is(lastErr, errTransient) {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, c.interrupted(ctx, ctx.Err())
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.Mark(fmt.Errorf("%w: provider request failed", usecase.ErrUpstreamUnavailable), errTransient)
	}
	c.logger.WarnContext(ctx, "nba stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// interrupted maps a stop of the call context. A spent budget is a provider
// timeout; a gate refusing to wait past the deadline is a timeout that says
// nothing about provider health; anything else is the caller's cancellation.
func (c *Client) interrupted(ctx context.Context, err error) error {
	switch {
	case crerr.Is(context.Cause(ctx), errBudgetSpent):
		return crerr.Mark(fmt.Errorf("%w: no answer within %s", usecase.ErrUpstreamTimeout, c.timeout), errTransient)
	case ctx.Err() == nil:
		return fmt.Errorf("%w: gate wait would pass the deadline: %v", usecase.ErrUpstreamTimeout, err)
	default:
		return err
	}
}

func setProviderHeaders(h http.Header) {
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("User-Agent", userAgent)
	h.Set("Referer", "https://www.nba.com/")
	h.Set("Origin", "https://www.nba.com")
	h.Set("x-nba-stats-origin", "stats")
	h.Set("x-nba-stats-token", "true")
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if (stderrors.As(err, &netErr) && netErr.Timeout()) || stderrors.Is(err, context.DeadlineExceeded) {
		return crerr.Mark(fmt.Errorf("%w: send request: %v", usecase.ErrUpstreamTimeout, err), errTransient)
	}
	return crerr.Mark(fmt.Errorf("%w: send request: %v", usecase.ErrUpstreamUnavailable, err), errTransient)
}

func classifyStatus(code int, body []byte) error {
	switch {
	case code == http.StatusTooManyRequests:
		return crerr.Mark(fmt.Errorf("%w: provider status=%d", usecase.ErrUpstreamRateLimited, code), errTransient)
	case code >= http.StatusInternalServerError:
		return crerr.Mark(fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrUpstreamUnavailable, code, abbreviateBody(body)), errTransient)
	case code == http.StatusBadRequest || code == http.StatusNotFound:
		return crerr.Mark(fmt.Errorf("provider status=%d body=%s", code, abbreviateBody(body)), errRejected)
	default:
		return fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrUpstreamUnavailable, code, abbreviateBody(body))
	}
}

func rejectedAsUnavailable(err error) error {
	if crerr.Is(err, errRejected) {
		return fmt.Errorf("%w: %v", usecase.ErrUpstreamUnavailable, err)
	}
	return err
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
