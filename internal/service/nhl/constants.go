package nhl

// Team timezone offsets from UTC, standard time.
var teamTimezones = map[string]int{
	"VAN": -8, "SEA": -8, "LAK": -8, "ANA": -8, "SJS": -8, "VGK": -8,
	"CGY": -7, "EDM": -7, "COL": -7, "UTA": -7,
	"DAL": -6, "MIN": -6, "WPG": -6, "CHI": -6, "STL": -6, "NSH": -6,
	"TOR": -5, "BOS": -5, "BUF": -5, "DET": -5, "MTL": -5, "OTT": -5,
	"NYR": -5, "NYI": -5, "NJD": -5, "PHI": -5, "PIT": -5, "WSH": -5,
	"CAR": -5, "CBJ": -5, "FLA": -5, "TBL": -5,
}

var divisions = map[string][]string{
	"Atlantic":     {"BOS", "BUF", "DET", "FLA", "MTL", "OTT", "TBL", "TOR"},
	"Metropolitan": {"CAR", "CBJ", "NJD", "NYI", "NYR", "PHI", "PIT", "WSH"},
	"Central":      {"CHI", "COL", "DAL", "MIN", "NSH", "STL", "WPG", "UTA"},
	"Pacific":      {"ANA", "CGY", "EDM", "LAK", "SJS", "SEA", "VAN", "VGK"},
}

var conferences = map[string][]string{
	"Eastern": {"Atlantic", "Metropolitan"},
	"Western": {"Central", "Pacific"},
}

var teamNames = map[string]string{
	"ANA": "Anaheim Ducks", "BOS": "Boston Bruins", "BUF": "Buffalo Sabres",
	"CGY": "Calgary Flames", "CAR": "Carolina Hurricanes", "CHI": "Chicago Blackhawks",
	"COL": "Colorado Avalanche", "CBJ": "Columbus Blue Jackets", "DAL": "Dallas Stars",
	"DET": "Detroit Red Wings", "EDM": "Edmonton Oilers", "FLA": "Florida Panthers",
	"LAK": "Los Angeles Kings", "MIN": "Minnesota Wild", "MTL": "Montreal Canadiens",
	"NSH": "Nashville Predators", "NJD": "New Jersey Devils", "NYI": "New York Islanders",
	"NYR": "New York Rangers", "OTT": "Ottawa Senators", "PHI": "Philadelphia Flyers",
	"PIT": "Pittsburgh Penguins", "SJS": "San Jose Sharks", "SEA": "Seattle Kraken",
	"STL": "St. Louis Blues", "TBL": "Tampa Bay Lightning", "TOR": "Toronto Maple Leafs",
	"UTA": "Utah Hockey Club", "VAN": "Vancouver Canucks", "VGK": "Vegas Golden Knights",
	"WSH": "Washington Capitals", "WPG": "Winnipeg Jets",
}

// TimezoneOf returns a team's UTC offset, defaulting to Eastern.
func TimezoneOf(abbrev string) int {
	if tz, ok := teamTimezones[abbrev]; ok {
		return tz
	}
	return -5
}

// DivisionOf returns the team's division, or "" when unknown.
func DivisionOf(abbrev string) string {
	for div, teams := range divisions {
		for _, t := range teams {
			if t == abbrev {
				return div
			}
		}
	}
	return ""
}

// ConferenceOf returns the team's conference, or "" when unknown.
func ConferenceOf(abbrev string) string {
	div := DivisionOf(abbrev)
	for conf, divs := range conferences {
		for _, d := range divs {
			if d == div && div != "" {
				return conf
			}
		}
	}
	return ""
}

// TeamName returns the team's full name, falling back to the abbreviation.
func TeamName(abbrev string) string {
	if name, ok := teamNames[abbrev]; ok {
		return name
	}
	return abbrev
}

// MeetingSample is how many head-to-head games feed the H2H factor:
// divisional rivals meet often enough for eight, conference opponents
// six, everyone else four.
func MeetingSample(team, opponent string) int {
	if d1, d2 := DivisionOf(team), DivisionOf(opponent); d1 != "" && d1 == d2 {
		return 8
	}
	if c1, c2 := ConferenceOf(team), ConferenceOf(opponent); c1 != "" && c1 == c2 {
		return 6
	}
	return 4
}
