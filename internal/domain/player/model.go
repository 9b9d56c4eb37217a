package player

import (
	"fmt"
	"strings"
)

const headshotURLFormat = "https://cdn.nba.com/headshots/nba/latest/1040x760/%s.png"

// Player is an entry of the active player directory.
type Player struct {
	ID       string
	Name     string
	TeamAbbr string
	TeamName string
	Active   bool
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// HeadshotURL returns the CDN headshot for the player.
func (p Player) HeadshotURL() string {
	if p.ID == "" {
		return ""
	}
	return fmt.Sprintf(headshotURLFormat, p.ID)
}

// Matches reports whether the player's name contains query, case-insensitively.
func (p Player) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), query)
}
