package nbastats

type team struct {
	ID   int64
	Abbr string
	Name string
}

var teams = []team{
	{ID: 1610612737, Abbr: "ATL", Name: "Atlanta Hawks"},
	{ID: 1610612738, Abbr: "BOS", Name: "Boston Celtics"},
	{ID: 1610612739, Abbr: "CLE", Name: "Cleveland Cavaliers"},
	{ID: 1610612740, Abbr: "NOP", Name: "New Orleans Pelicans"},
	{ID: 1610612741, Abbr: "CHI", Name: "Chicago Bulls"},
	{ID: 1610612742, Abbr: "DAL", Name: "Dallas Mavericks"},
	{ID: 1610612743, Abbr: "DEN", Name: "Denver Nuggets"},
	{ID: 1610612744, Abbr: "GSW", Name: "Golden State Warriors"},
	{ID: 1610612745, Abbr: "HOU", Name: "Houston Rockets"},
	{ID: 1610612746, Abbr: "LAC", Name: "LA Clippers"},
	{ID: 1610612747, Abbr: "LAL", Name: "Los Angeles Lakers"},
	{ID: 1610612748, Abbr: "MIA", Name: "Miami Heat"},
	{ID: 1610612749, Abbr: "MIL", Name: "Milwaukee Bucks"},
	{ID: 1610612750, Abbr: "MIN", Name: "Minnesota Timberwolves"},
	{ID: 1610612751, Abbr: "BKN", Name: "Brooklyn Nets"},
	{ID: 1610612752, Abbr: "NYK", Name: "New York Knicks"},
	{ID: 1610612753, Abbr: "ORL", Name: "Orlando Magic"},
	{ID: 1610612754, Abbr: "IND", Name: "Indiana Pacers"},
	{ID: 1610612755, Abbr: "PHI", Name: "Philadelphia 76ers"},
	{ID: 1610612756, Abbr: "PHX", Name: "Phoenix Suns"},
	{ID: 1610612757, Abbr: "POR", Name: "Portland Trail Blazers"},
	{ID: 1610612758, Abbr: "SAC", Name: "Sacramento Kings"},
	{ID: 1610612759, Abbr: "SAS", Name: "San Antonio Spurs"},
	{ID: 1610612760, Abbr: "OKC", Name: "Oklahoma City Thunder"},
	{ID: 1610612761, Abbr: "TOR", Name: "Toronto Raptors"},
	{ID: 1610612762, Abbr: "UTA", Name: "Utah Jazz"},
	{ID: 1610612763, Abbr: "MEM", Name: "Memphis Grizzlies"},
	{ID: 1610612764, Abbr: "WAS", Name: "Washington Wizards"},
	{ID: 1610612765, Abbr: "DET", Name: "Detroit Pistons"},
	{ID: 1610612766, Abbr: "CHA", Name: "Charlotte Hornets"},
}

var (
	teamByID   = make(map[int64]team, len(teams))
	teamByAbbr = make(map[string]team, len(teams))
)

func init() {
	for _, t := range teams {
		teamByID[t.ID] = t
		teamByAbbr[t.Abbr] = t
	}
}
