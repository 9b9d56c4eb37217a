package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/propstats/internal/platform/logging"
)

type staticUpstream struct{ stats UpstreamStats }

func (s staticUpstream) UpstreamStats() UpstreamStats { return s.stats }

func newTestAdminService(fetcher *countingFetcher) (*AdminService, *AnalysisService) {
	refresher, gameCache := newTestController(fetcher)
	players := NewPlayerService(fetcher, time.Hour, testSeason)
	matchups := NewMatchupService(fetcher, time.Hour)
	analysis := NewAnalysisService(refresher, players, matchups, AnalysisServiceConfig{DefaultSeason: testSeason}, logging.NewNop())
	admin := NewAdminService(
		refresher,
		gameCache,
		players,
		matchups,
		staticUpstream{stats: UpstreamStats{Requests: 7, CircuitState: "closed"}},
		AdminServiceConfig{DefaultSeason: testSeason, WarmWorkers: 2},
		logging.NewNop(),
	)
	return admin, analysis
}

func TestAdminService_RefreshPlayerBypassesFreshness(t *testing.T) {
	t.Parallel()

	fetcher := newCountingFetcher()
	fetcher.setLog("2544", pointsLog("2544", 30, 25))
	admin, analysis := newTestAdminService(fetcher)

	if _, err := analysis.Analyze(context.Background(), AnalysisRequest{PlayerID: "2544", Stat: "points", Line: 20}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	fetcher.setLog("2544", pointsLog("2544", 30, 25, 40))

	res, err := admin.RefreshPlayer(context.Background(), "2544", "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.Records != 3 || res.Season != testSeason {
		t.Fatalf("unexpected refresh result: %+v", res)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Fatalf("expected forced second fetch, got %d calls", got)
	}

	if _, err := admin.RefreshPlayer(context.Background(), "abc", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminService_WarmPlayers(t *testing.T) {
	t.Parallel()

	fetcher := newCountingFetcher()
	fetcher.setLog("2544", pointsLog("2544", 30, 25))
	fetcher.setLog("201939", pointsLog("201939", 28))
	fetcher.setErr("203999", ErrUpstreamUnavailable)
	admin, _ := newTestAdminService(fetcher)

	res, err := admin.WarmPlayers(context.Background(), WarmInput{PlayerIDs: []string{"2544", "201939", "203999", "2544", " "}})
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if len(res.Players) != 3 || res.SuccessCount != 2 || res.FailedCount != 1 {
		t.Fatalf("unexpected warm result: %+v", res)
	}
	if res.Players[0].PlayerID != "201939" {
		t.Fatalf("expected rows sorted by player id, got %s", res.Players[0].PlayerID)
	}

	again, err := admin.WarmPlayers(context.Background(), WarmInput{PlayerIDs: []string{"2544"}})
	if err != nil {
		t.Fatalf("second warm: %v", err)
	}
	if again.SkippedCount != 1 {
		t.Fatalf("fresh player must be skipped: %+v", again)
	}

	if _, err := admin.WarmPlayers(context.Background(), WarmInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
}

func TestAdminService_ClearCacheAndStats(t *testing.T) {
	t.Parallel()

	fetcher := newCountingFetcher()
	fetcher.setLog("2544", pointsLog("2544", 30, 25))
	fetcher.setLog("201939", pointsLog("201939", 28))
	admin, analysis := newTestAdminService(fetcher)

	for _, id := range []string{"2544", "201939"} {
		if _, err := analysis.Analyze(context.Background(), AnalysisRequest{PlayerID: id, Stat: "points", Line: 20, Opponent: "BOS"}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	stats, err := admin.CacheStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Entries != 2 || stats.Records != 3 || stats.DirectorySeasons != 1 || stats.RankSeasons != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Upstream == nil || stats.Upstream.Requests != 7 {
		t.Fatalf("expected upstream stats, got %+v", stats.Upstream)
	}

	one, err := admin.ClearCache(context.Background(), "2544")
	if err != nil || one.Entries != 1 || one.DirectorySeasons != 0 {
		t.Fatalf("clear one: %+v %v", one, err)
	}
	all, err := admin.ClearCache(context.Background(), "")
	if err != nil || all.Entries != 1 || all.DirectorySeasons != 1 || all.RankSeasons != 1 {
		t.Fatalf("clear all: %+v %v", all, err)
	}
}

// limitedPool runs the first accepted tasks on their own goroutines and
// rejects the rest, like a pool closed mid batch.
type limitedPool struct {
	accept int
}

func (p *limitedPool) Submit(task func()) error {
	if p.accept == 0 {
		return errors.New("pool closed")
	}
	p.accept--
	go task()
	return nil
}

func (p *limitedPool) Release() {}

func TestAdminService_WarmPlayersWaitsForAcceptedTasksOnSubmitFailure(t *testing.T) {
	t.Parallel()

	fetcher := newCountingFetcher()
	fetcher.setLog("2544", pointsLog("2544", 30))
	fetcher.setLog("201939", pointsLog("201939", 28))
	fetcher.gate = make(chan struct{})
	admin, _ := newTestAdminService(fetcher)

	pool := &limitedPool{accept: 1}
	admin.newPool = func(int) (warmPool, error) { return pool, nil }

	done := make(chan error, 1)
	go func() {
		_, err := admin.WarmPlayers(context.Background(), WarmInput{PlayerIDs: []string{"2544", "201939"}})
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for fetcher.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	select {
	case err := <-done:
		t.Fatalf("warm-up returned while a task was still running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.gate)
	if err := <-done; err == nil {
		t.Fatalf("expected submit error")
	}
	if _, ok, err := admin.cache.Get(context.Background(), "2544", testSeason); err != nil || !ok {
		t.Fatalf("accepted task had not stored its log when warm-up returned: ok=%v err=%v", ok, err)
	}
}
