package gamelog

import "context"

// Repository stores cached game logs keyed by (player, season).
//
// Replace must swap the whole entry atomically: readers observe either the
// previous entry or the new one, never a partial mix. Replace must keep
// LastFetchedAt monotonically non-decreasing for a key.
type Repository interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Replace(ctx context.Context, entry Entry) (Entry, error)
	DeletePlayer(ctx context.Context, playerID string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}
