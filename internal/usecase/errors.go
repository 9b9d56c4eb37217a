package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrPlayerNotFound  = errors.New("player not found")
	ErrNoDataAvailable = errors.New("no data available")

	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamSchema marks payloads whose shape drifted. Missing columns
	// default to zero; only a payload without any result set fails.
	ErrUpstreamSchema = errors.New("upstream schema mismatch")
)

// IsUpstreamFailure reports whether err came from the stats provider rather
// than from the caller or local storage.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimited) ||
		errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrDependencyUnavailable)
}
