package player

import "context"

// Directory lists the players known to the stats provider for a season.
type Directory interface {
	FetchPlayers(ctx context.Context, season string) ([]Player, error)
}
