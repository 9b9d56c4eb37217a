package gamelog

import (
	"fmt"
	"strings"
	"time"
)

// GameRecord is one player's box score line for one game.
// Records are values: once built they are never mutated.
type GameRecord struct {
	PlayerID        string
	GameID          string
	Season          string
	Date            time.Time
	Opponent        string
	IsHome          bool
	Result          string
	Minutes         float64
	Points          int
	Rebounds        int
	Assists         int
	Threes          int
	ThreesAttempted int
	Steals          int
	Blocks          int
	Turnovers       int
}

func (r GameRecord) Validate() error {
	if strings.TrimSpace(r.PlayerID) == "" {
		return fmt.Errorf("game record player id is required")
	}
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("game record game id is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("game record %s date is required", r.GameID)
	}
	return nil
}

// Entry is the cached game log of one player for one season.
// Records are ordered most recent first.
type Entry struct {
	PlayerID      string
	Season        string
	LastFetchedAt time.Time
	Records       []GameRecord
}

// Key identifies an Entry.
type Key struct {
	PlayerID string
	Season   string
}

func (k Key) String() string {
	return k.PlayerID + ":" + k.Season
}

func (e Entry) Key() Key {
	return Key{PlayerID: e.PlayerID, Season: e.Season}
}

// Age reports how long ago the entry was fetched, never negative.
func (e Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.LastFetchedAt)
	if age < 0 {
		return 0
	}
	return age
}

// Stats summarizes cache contents.
type Stats struct {
	Entries int
	Records int
	Players int
}
