package nbastats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/propstats/internal/platform/logging"
	"github.com/riskibarqy/propstats/internal/platform/resilience"
	"github.com/riskibarqy/propstats/internal/usecase"
)

const gameLogPayload = `{
  "resource": "playergamelog",
  "resultSets": [{
    "name": "PlayerGameLog",
    "headers": ["SEASON_ID","Player_ID","Game_ID","GAME_DATE","MATCHUP","WL","MIN","FG3M","FG3A","REB","AST","STL","BLK","TOV","PTS"],
    "rowSet": [
      ["22025", 2544, "0022500201", "NOV 14, 2025", "LAL vs. BOS", "W", "34:30", 3, 7, 8, 9, 1, 0, 4, 31],
      ["22025", 2544, "0022500187", "Nov 12, 2025", "LAL @ DEN", "L", 36, 1, 5, 10, 6, 2, 1, 3, 22],
      ["22025", 2544, "", "Nov 10, 2025", "LAL @ PHX", "W", 30, 0, 0, 0, 0, 0, 0, 0, 0]
    ]
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL:      server.URL,
		Timeout:      time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
		Gate:         resilience.NewGate(time.Millisecond),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestFetchGameLog_ParsesRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playergamelog" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("PlayerID") != "2544" || r.URL.Query().Get("Season") != "2025-26" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("SeasonType") != "Regular Season" {
			t.Errorf("unexpected season type %q", r.URL.Query().Get("SeasonType"))
		}
		if r.Header.Get("x-nba-stats-origin") != "stats" || r.Header.Get("Referer") == "" {
			t.Errorf("missing provider headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(gameLogPayload))
	}, nil)

	records, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the row without game id to be skipped, got %d records", len(records))
	}

	first := records[0]
	if first.GameID != "0022500201" || first.Opponent != "BOS" || !first.IsHome {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.Date.Equal(time.Date(2025, time.November, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", first.Date)
	}
	if first.Minutes != 34.5 || first.Points != 31 || first.Threes != 3 || first.ThreesAttempted != 7 || first.Turnovers != 4 {
		t.Fatalf("unexpected box score: %+v", first)
	}

	second := records[1]
	if second.IsHome || second.Opponent != "DEN" || second.Result != "L" || second.Minutes != 36 {
		t.Fatalf("unexpected second record: %+v", second)
	}

	stats := client.UpstreamStats()
	if stats.Requests != 1 || stats.SchemaDrifts != 1 || stats.CircuitState != "disabled" {
		t.Fatalf("unexpected upstream stats: %+v", stats)
	}
}

func TestFetchGameLog_MissingColumnsDefaultToZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerGameLog","headers":["GAME_ID","GAME_DATE","MATCHUP","PTS"],"rowSet":[["0022500001","Oct 22, 2025","LAL vs. GSW",27]]}]}`))
	}, nil)

	records, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 || records[0].Points != 27 || records[0].Rebounds != 0 {
		t.Fatalf("unexpected records: %+v", records)
	}
	if client.UpstreamStats().SchemaDrifts != 1 {
		t.Fatalf("expected drift to be counted")
	}
}

func TestFetchGameLog_NoResultSets(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resource":"playergamelog"}`))
	}, nil)

	_, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if !errors.Is(err, usecase.ErrUpstreamSchema) || !errors.Is(err, usecase.ErrUpstreamUnavailable) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestFetchGameLog_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		want     error
		attempts int32
	}{
		{name: "bad request means unknown player", status: http.StatusBadRequest, want: usecase.ErrPlayerNotFound, attempts: 1},
		{name: "rate limited is retried", status: http.StatusTooManyRequests, want: usecase.ErrUpstreamRateLimited, attempts: 2},
		{name: "server error is retried", status: http.StatusBadGateway, want: usecase.ErrUpstreamUnavailable, attempts: 2},
		{name: "forbidden is not retried", status: http.StatusForbidden, want: usecase.ErrUpstreamUnavailable, attempts: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(tc.status)
			}, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

			_, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if hits.Load() != tc.attempts {
				t.Fatalf("expected %d attempts, got %d", tc.attempts, hits.Load())
			}
		})
	}
}

func TestFetchGameLog_RetryRecovers(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(gameLogPayload))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 2 })

	records, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 || client.UpstreamStats().Requests != 2 || client.UpstreamStats().Failures != 0 {
		t.Fatalf("unexpected result: records=%d stats=%+v", len(records), client.UpstreamStats())
	}
}

func TestFetchGameLog_Timeout(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(cfg *ClientConfig) {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Millisecond}
	})

	_, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if !errors.Is(err, usecase.ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	if !usecase.IsUpstreamFailure(err) {
		t.Fatalf("timeout must count as an upstream failure")
	}
}

func TestFetchGameLog_TimeoutBoundsWholeCall(t *testing.T) {
	t.Parallel()

	const timeout = 100 * time.Millisecond
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, func(cfg *ClientConfig) {
		cfg.Timeout = timeout
		cfg.MaxRetries = 3
		cfg.RetryBackoff = 50 * time.Millisecond
	})

	start := time.Now()
	_, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	elapsed := time.Since(start)

	if !errors.Is(err, usecase.ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	if elapsed > 2*timeout {
		t.Fatalf("call took %s, timeout is %s", elapsed, timeout)
	}
}

func TestFetchGameLog_CallerCancellationIsNotATimeout(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := client.FetchGameLog(ctx, "2544", "2025-26")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, usecase.ErrUpstreamTimeout) {
		t.Fatalf("caller cancellation must not read as a provider timeout")
	}
}

func TestFetchGameLog_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchGameLog(context.Background(), "2544", "2025-26"); !errors.Is(err, usecase.ErrUpstreamUnavailable) {
			t.Fatalf("call %d: expected ErrUpstreamUnavailable, got %v", i, err)
		}
	}

	_, err := client.FetchGameLog(context.Background(), "2544", "2025-26")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("open breaker must not reach the provider, hits=%d", hits.Load())
	}
	stats := client.UpstreamStats()
	if stats.CircuitState != string(resilience.CircuitStateOpen) || stats.CircuitTrips != 1 {
		t.Fatalf("unexpected breaker stats: %+v", stats)
	}
}

func TestFetchGameLog_RejectedRequestDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1}
	})

	for i := 0; i < 3; i++ {
		if _, err := client.FetchGameLog(context.Background(), "1", "2025-26"); !errors.Is(err, usecase.ErrPlayerNotFound) {
			t.Fatalf("call %d: expected ErrPlayerNotFound, got %v", i, err)
		}
	}
	if client.UpstreamStats().CircuitState != string(resilience.CircuitStateClosed) {
		t.Fatalf("breaker should stay closed")
	}
}

func TestFetchPlayers(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("IsOnlyCurrentSeason") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonAllPlayers",
			"headers":["PERSON_ID","DISPLAY_LAST_COMMA_FIRST","DISPLAY_FIRST_LAST","ROSTERSTATUS","TEAM_CITY","TEAM_NAME","TEAM_ABBREVIATION"],
			"rowSet":[
				[2544,"James, LeBron","LeBron James",1,"Los Angeles","Lakers","LAL"],
				[201939,"Curry, Stephen","Stephen Curry",1,"","","GSW"],
				[1,"Nobody","",0,"","",""]
			]}]}`))
	}, nil)

	players, err := client.FetchPlayers(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("fetch players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %+v", players)
	}
	if players[0].ID != "2544" || players[0].TeamName != "Los Angeles Lakers" || !players[0].Active {
		t.Fatalf("unexpected first player: %+v", players[0])
	}
	if players[1].TeamName != "Golden State Warriors" {
		t.Fatalf("expected team name from static table, got %+v", players[1])
	}
}

func TestFetchDefenseRanks(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("MeasureType") != "Advanced" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"LeagueDashTeamStats",
			"headers":["TEAM_ID","TEAM_NAME","DEF_RATING"],
			"rowSet":[
				[1610612764,"Washington Wizards",121.4],
				[1610612738,"Boston Celtics",108.2],
				[1610612743,"Denver Nuggets",114.9],
				[42,"Expansion",100.0]
			]}]}`))
	}, nil)

	ranks, err := client.FetchDefenseRanks(context.Background(), "2025-26")
	if err != nil {
		t.Fatalf("fetch ranks: %v", err)
	}
	if len(ranks) != 3 || ranks["BOS"] != 1 || ranks["DEN"] != 2 || ranks["WAS"] != 3 {
		t.Fatalf("unexpected ranks: %v", ranks)
	}
}
