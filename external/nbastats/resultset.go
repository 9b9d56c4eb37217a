package nbastats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/propstats/internal/domain/gamelog"
	"github.com/riskibarqy/propstats/internal/domain/player"
)

var (
	gameLogColumns = []string{"GAME_ID", "GAME_DATE", "MATCHUP", "WL", "MIN", "PTS", "REB", "AST", "FG3M", "FG3A", "STL", "BLK", "TOV"}
	playerColumns  = []string{"PERSON_ID", "DISPLAY_FIRST_LAST", "TEAM_ABBREVIATION"}
	defenseColumns = []string{"TEAM_ID", "DEF_RATING"}

	gameDateLayouts = []string{"Jan 02, 2006", "2006-01-02T15:04:05", "2006-01-02"}
)

// envelope is the stats.nba.com payload: named tables of positional rows.
type envelope struct {
	ResultSets []resultSet `json:"resultSets"`
	// A few endpoints answer with a single set under this key.
	ResultSet *resultSet `json:"resultSet"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type table struct {
	name  string
	index map[string]int
	rows  [][]any
}

// table picks the named result set, falling back to the first one.
func (e envelope) table(name string) (table, bool) {
	sets := e.ResultSets
	if len(sets) == 0 && e.ResultSet != nil {
		sets = []resultSet{*e.ResultSet}
	}
	if len(sets) == 0 {
		return table{}, false
	}

	chosen := sets[0]
	for _, set := range sets {
		if strings.EqualFold(set.Name, name) {
			chosen = set
			break
		}
	}

	index := make(map[string]int, len(chosen.Headers))
	for i, header := range chosen.Headers {
		index[strings.ToUpper(strings.TrimSpace(header))] = i
	}
	return table{name: chosen.Name, index: index, rows: chosen.RowSet}, true
}

func (t table) missing(columns ...string) []string {
	var out []string
	for _, column := range columns {
		if _, ok := t.index[column]; !ok {
			out = append(out, column)
		}
	}
	return out
}

func (t table) value(row []any, column string) any {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

func (t table) strAt(row []any, column string) string {
	switch v := t.value(row, column).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func (t table) floatAt(row []any, column string) float64 {
	return asFloat(t.value(row, column))
}

func (t table) intAt(row []any, column string) int {
	return int(math.Round(t.floatAt(row, column)))
}

func (t table) int64At(row []any, column string) int64 {
	return int64(math.Round(t.floatAt(row, column)))
}

func (t table) gameRecord(row []any, playerID, season string) gamelog.GameRecord {
	opponent, home := parseMatchup(t.strAt(row, "MATCHUP"))
	return gamelog.GameRecord{
		PlayerID:        playerID,
		GameID:          t.strAt(row, "GAME_ID"),
		Season:          season,
		Date:            parseGameDate(t.strAt(row, "GAME_DATE")),
		Opponent:        opponent,
		IsHome:          home,
		Result:          strings.ToUpper(t.strAt(row, "WL")),
		Minutes:         parseMinutes(t.value(row, "MIN")),
		Points:          t.intAt(row, "PTS"),
		Rebounds:        t.intAt(row, "REB"),
		Assists:         t.intAt(row, "AST"),
		Threes:          t.intAt(row, "FG3M"),
		ThreesAttempted: t.intAt(row, "FG3A"),
		Steals:          t.intAt(row, "STL"),
		Blocks:          t.intAt(row, "BLK"),
		Turnovers:       t.intAt(row, "TOV"),
	}
}

func (t table) player(row []any) player.Player {
	p := player.Player{
		ID:       strconv.FormatInt(t.int64At(row, "PERSON_ID"), 10),
		Name:     t.strAt(row, "DISPLAY_FIRST_LAST"),
		TeamAbbr: strings.ToUpper(t.strAt(row, "TEAM_ABBREVIATION")),
		Active:   true,
	}
	if p.ID == "0" {
		p.ID = ""
	}
	if _, ok := t.index["ROSTERSTATUS"]; ok {
		p.Active = t.intAt(row, "ROSTERSTATUS") == 1
	}
	city, name := t.strAt(row, "TEAM_CITY"), t.strAt(row, "TEAM_NAME")
	switch {
	case city != "" && name != "":
		p.TeamName = city + " " + name
	default:
		if team, ok := teamByAbbr[p.TeamAbbr]; ok {
			p.TeamName = team.Name
		}
	}
	return p
}

// parseMatchup reads "LAL vs. BOS" (home) or "LAL @ BOS" (away).
func parseMatchup(raw string) (opponent string, home bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", false
	}
	home = strings.Contains(strings.ToLower(raw), "vs")
	return gamelog.NormalizeTeam(fields[len(fields)-1]), home
}

func parseGameDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range gameDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// parseMinutes accepts "MM:SS", "34" or a number.
func parseMinutes(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return asFloat(v)
	}
	s = strings.TrimSpace(s)
	if mm, ss, found := strings.Cut(s, ":"); found {
		m, errM := strconv.ParseFloat(mm, 64)
		sec, errS := strconv.ParseFloat(ss, 64)
		if errM != nil || errS != nil {
			return 0
		}
		return math.Round((m+sec/60)*100) / 100
	}
	return asFloat(s)
}

func asFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0
		}
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

type teamRating struct {
	abbr   string
	rating float64
}

// rankByRating assigns 1 to the lowest defensive rating. Ties keep
// abbreviation order.
func rankByRating(ratings []teamRating) map[string]int {
	sort.SliceStable(ratings, func(i, j int) bool {
		if ratings[i].rating != ratings[j].rating {
			return ratings[i].rating < ratings[j].rating
		}
		return ratings[i].abbr < ratings[j].abbr
	})
	out := make(map[string]int, len(ratings))
	for i, r := range ratings {
		out[r.abbr] = i + 1
	}
	return out
}
