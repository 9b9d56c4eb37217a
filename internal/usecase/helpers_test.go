package usecase

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/domain/player"
)

// countingFetcher is a StatsProvider double that counts upstream calls and
// can hold them open until released.
type countingFetcher struct {
	mu      sync.Mutex
	logs    map[string][]gamelog.GameRecord
	errs    map[string]error
	ranks   map[string]int
	players []player.Player

	calls     atomic.Int32
	gate      chan struct{}
	playerErr error
	rankErr   error
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		logs:  make(map[string][]gamelog.GameRecord),
		errs:  make(map[string]error),
		ranks: map[string]int{"BOS": 1, "WAS": 30, "DEN": 18},
		players: []player.Player{
			{ID: "2544", Name: "LeBron James", TeamAbbr: "LAL", Active: true},
			{ID: "201939", Name: "Stephen Curry", TeamAbbr: "GSW", Active: true},
			{ID: "203999", Name: "Nikola Jokic", TeamAbbr: "DEN", Active: true},
		},
	}
}

func (f *countingFetcher) setLog(playerID string, records []gamelog.GameRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[playerID] = records
	delete(f.errs, playerID)
}

func (f *countingFetcher) setErr(playerID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[playerID] = err
}

func (f *countingFetcher) FetchGameLog(ctx context.Context, playerID, _ string) ([]gamelog.GameRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[playerID]; err != nil {
		return nil, err
	}
	return gamelog.Clone(f.logs[playerID]), nil
}

func (f *countingFetcher) FetchPlayers(context.Context, string) ([]player.Player, error) {
	if f.playerErr != nil {
		return nil, f.playerErr
	}
	return f.players, nil
}

func (f *countingFetcher) FetchDefenseRanks(context.Context, string) (map[string]int, error) {
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	return f.ranks, nil
}

// pointsLog builds a log whose first element is the most recent game.
func pointsLog(playerID string, points ...int) []gamelog.GameRecord {
	start := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	out := make([]gamelog.GameRecord, len(points))
	for i, p := range points {
		out[i] = gamelog.GameRecord{
			PlayerID: playerID,
			GameID:   "002250" + strconv.Itoa(1000+i),
			Season:   "2025-26",
			Date:     start.AddDate(0, 0, -2*i),
			Opponent: "BOS",
			IsHome:   i%2 == 0,
			Points:   p,
			Rebounds: 5,
			Assists:  5,
		}
	}
	return out
}
