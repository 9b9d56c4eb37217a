package httpapi

import (
	"time"

	"github.com/riskibarqy/propstats/internal/domain/analytics"
	"github.com/riskibarqy/propstats/internal/domain/player"
	"github.com/riskibarqy/propstats/internal/usecase"
)

type playerDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TeamAbbr    string `json:"team_abbr,omitempty"`
	TeamName    string `json:"team_name,omitempty"`
	Active      bool   `json:"active"`
	HeadshotURL string `json:"headshot_url,omitempty"`
}

type hitRateDTO struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Total  int `json:"total"`
	Pct    int `json:"pct"`
}

type hitRatesDTO struct {
	L5     hitRateDTO `json:"l5"`
	L10    hitRateDTO `json:"l10"`
	L20    hitRateDTO `json:"l20"`
	Season hitRateDTO `json:"season"`
	Home   hitRateDTO `json:"home"`
	Away   hitRateDTO `json:"away"`
}

type averagesDTO struct {
	Season float64 `json:"season"`
	L5     float64 `json:"l5"`
	L10    float64 `json:"l10"`
}

type matchupDTO struct {
	Opponent     string `json:"opponent,omitempty"`
	Difficulty   string `json:"difficulty"`
	OpponentRank int    `json:"opponent_rank,omitempty"`
}

type scoreDTO struct {
	PropScore   int     `json:"prop_score"`
	Hit         float64 `json:"hit"`
	Margin      float64 `json:"margin"`
	MarginPct   float64 `json:"margin_pct"`
	Consistency float64 `json:"consistency"`
	Difficulty  float64 `json:"difficulty"`
}

type gameOutcomeDTO struct {
	GameID   string  `json:"game_id"`
	Date     string  `json:"date"`
	Opponent string  `json:"opponent"`
	IsHome   bool    `json:"is_home"`
	Result   string  `json:"result,omitempty"`
	Minutes  float64 `json:"minutes"`
	Value    float64 `json:"value"`
	Hit      bool    `json:"hit"`
}

type analysisDTO struct {
	Player         playerDTO        `json:"player"`
	Season         string           `json:"season"`
	Stat           string           `json:"stat"`
	Line           float64          `json:"line"`
	GamesPlayed    int              `json:"games_played"`
	HitRates       hitRatesDTO      `json:"hit_rates"`
	Averages       averagesDTO      `json:"averages"`
	Consistency    float64          `json:"consistency"`
	Trend          string           `json:"trend"`
	Matchup        matchupDTO       `json:"matchup"`
	Score          scoreDTO         `json:"score"`
	Verdict        string           `json:"verdict"`
	RecentGames    []gameOutcomeDTO `json:"recent_games"`
	FetchedAt      string           `json:"fetched_at"`
	DataAgeSeconds int64            `json:"data_age_seconds"`
	Stale          bool             `json:"stale"`
	Refreshed      bool             `json:"refreshed"`
}

type boardItemDTO struct {
	Index    int              `json:"index"`
	PlayerID string           `json:"player_id"`
	Stat     string           `json:"stat"`
	Line     float64          `json:"line"`
	Analysis *analysisDTO     `json:"analysis,omitempty"`
	Error    *googleErrorItem `json:"error,omitempty"`
}

type boardDTO struct {
	Items     []boardItemDTO `json:"items"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

type statTypeDTO struct {
	Name string  `json:"name"`
	Line float64 `json:"fixed_line,omitempty"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:          p.ID,
		Name:        p.Name,
		TeamAbbr:    p.TeamAbbr,
		TeamName:    p.TeamName,
		Active:      p.Active,
		HeadshotURL: p.HeadshotURL(),
	}
}

func hitRateToDTO(h analytics.HitRate) hitRateDTO {
	return hitRateDTO{Hits: h.Hits, Misses: h.Misses(), Total: h.Total, Pct: h.Pct}
}

func analysisToDTO(res usecase.AnalysisResult) analysisDTO {
	report := res.Report
	games := make([]gameOutcomeDTO, 0, len(report.Games))
	for _, g := range report.Games {
		games = append(games, gameOutcomeDTO{
			GameID:   g.GameID,
			Date:     g.Date.Format(time.DateOnly),
			Opponent: g.Opponent,
			IsHome:   g.IsHome,
			Result:   g.Result,
			Minutes:  g.Minutes,
			Value:    g.Value,
			Hit:      g.Hit,
		})
	}

	return analysisDTO{
		Player:      playerToDTO(res.Player),
		Season:      res.Season,
		Stat:        string(report.Stat),
		Line:        report.Line,
		GamesPlayed: report.GamesPlayed,
		HitRates: hitRatesDTO{
			L5:     hitRateToDTO(report.HitRates.L5),
			L10:    hitRateToDTO(report.HitRates.L10),
			L20:    hitRateToDTO(report.HitRates.L20),
			Season: hitRateToDTO(report.HitRates.Season),
			Home:   hitRateToDTO(report.HitRates.Home),
			Away:   hitRateToDTO(report.HitRates.Away),
		},
		Averages: averagesDTO{
			Season: analytics.Round1(report.Averages.Season),
			L5:     analytics.Round1(report.Averages.L5),
			L10:    analytics.Round1(report.Averages.L10),
		},
		Consistency: analytics.Round1(report.Consistency),
		Trend:       string(report.Trend),
		Matchup: matchupDTO{
			Opponent:     res.Opponent,
			Difficulty:   string(report.Difficulty),
			OpponentRank: report.OpponentRank,
		},
		Score: scoreDTO{
			PropScore:   report.Score.Score,
			Hit:         analytics.Round1(report.Score.Hit),
			Margin:      analytics.Round1(report.Score.Margin),
			MarginPct:   analytics.Round1(report.Score.MarginPct),
			Consistency: analytics.Round1(report.Score.Consistency),
			Difficulty:  report.Score.Difficulty,
		},
		Verdict:        string(report.Verdict),
		RecentGames:    games,
		FetchedAt:      res.FetchedAt.UTC().Format(time.RFC3339),
		DataAgeSeconds: int64(res.DataAge.Seconds()),
		Stale:          res.Stale,
		Refreshed:      res.Refreshed,
	}
}

func boardToDTO(items []usecase.BoardItem) boardDTO {
	out := boardDTO{Items: make([]boardItemDTO, 0, len(items))}
	for _, item := range items {
		row := boardItemDTO{
			Index:    item.Index,
			PlayerID: item.Request.PlayerID,
			Stat:     string(item.Request.Stat),
			Line:     item.Request.Line,
		}
		if item.Err != nil {
			mapped := mapError(item.Err)
			row.Error = &googleErrorItem{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: item.Err.Error(),
			}
			out.Failed++
		} else {
			analysis := analysisToDTO(item.Result)
			row.Stat = analysis.Stat
			row.Line = analysis.Line
			row.Analysis = &analysis
			out.Succeeded++
		}
		out.Items = append(out.Items, row)
	}
	return out
}
