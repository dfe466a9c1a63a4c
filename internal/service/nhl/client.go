// Package nhl talks to the NHL API and MoneyPuck data dumps and builds
// the snapshots the scoring engine consumes.
package nhl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/pkg/config"
	pkghttp "HockeyQuant/pkg/http"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/util"

	"github.com/cenkalti/backoff/v4"
)

// Client fetches raw NHL API payloads with retry.
type Client struct {
	http         *pkghttp.Client
	baseURL      string
	statsBaseURL string
	injuryURL    string
	maxRetries   uint64
	log          *logger.Logger
}

func NewClient(cfg *config.NHLConfig, log *logger.Logger) *Client {
	return &Client{
		http:         pkghttp.NewClient(pkghttp.WithClientTimeout(cfg.Timeout)),
		baseURL:      cfg.BaseURL,
		statsBaseURL: cfg.StatsBaseURL,
		injuryURL:    cfg.InjuryURL,
		maxRetries:   uint64(cfg.MaxRetries),
		log:          log,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	op := func() error {
		return c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: http.MethodGet,
			URL:    url,
		}, dest)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		return c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: http.MethodGet,
			URL:    url,
		}, &body)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return body, nil
}

type scheduleResponse struct {
	GameWeek []struct {
		Date  string        `json:"date"`
		Games []apiGameInfo `json:"games"`
	} `json:"gameWeek"`
}

type apiGameInfo struct {
	ID           int64  `json:"id"`
	GameState    string `json:"gameState"`
	StartTimeUTC string `json:"startTimeUTC"`
	GameDate     string `json:"gameDate"`
	Venue        struct {
		Default string `json:"default"`
	} `json:"venue"`
	HomeTeam apiTeamSide `json:"homeTeam"`
	AwayTeam apiTeamSide `json:"awayTeam"`
	GameOutcome struct {
		LastPeriodType string `json:"lastPeriodType"`
	} `json:"gameOutcome"`
}

type apiTeamSide struct {
	Abbrev string `json:"abbrev"`
	Score  int    `json:"score"`
}

// Games lists the slate for one date.
func (c *Client) Games(ctx context.Context, date string) ([]models.ScheduledGame, error) {
	var resp scheduleResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/schedule/%s", c.baseURL, date), &resp); err != nil {
		return nil, err
	}

	var games []models.ScheduledGame
	for _, day := range resp.GameWeek {
		if day.Date != date {
			continue
		}
		for _, g := range day.Games {
			start, ok := util.ParseTime(g.StartTimeUTC)
			if !ok {
				c.log.Warn("bad start time",
					logger.Int("game_id", int(g.ID)),
					logger.String("value", g.StartTimeUTC))
				continue
			}
			games = append(games, models.ScheduledGame{
				GameID:    g.ID,
				GameDate:  date,
				StartTime: start,
				Venue:     g.Venue.Default,
				Home:      g.HomeTeam.Abbrev,
				Away:      g.AwayTeam.Abbrev,
				State:     g.GameState,
			})
		}
	}
	return games, nil
}

type scoreResponse struct {
	Games []apiGameInfo `json:"games"`
}

// FinalScores returns results for completed games on date.
func (c *Client) FinalScores(ctx context.Context, date string) ([]models.FinalScore, error) {
	var resp scoreResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/score/%s", c.baseURL, date), &resp); err != nil {
		return nil, err
	}

	var finals []models.FinalScore
	for _, g := range resp.Games {
		if g.GameState != "OFF" && g.GameState != "FINAL" {
			continue
		}
		winner := g.HomeTeam.Abbrev
		if g.AwayTeam.Score > g.HomeTeam.Score {
			winner = g.AwayTeam.Abbrev
		}
		finals = append(finals, models.FinalScore{
			GameID:    g.ID,
			HomeGoals: g.HomeTeam.Score,
			AwayGoals: g.AwayTeam.Score,
			Winner:    winner,
		})
	}
	return finals, nil
}

type standingsResponse struct {
	Standings []struct {
		TeamAbbrev struct {
			Default string `json:"default"`
		} `json:"teamAbbrev"`
		Wins         int `json:"wins"`
		Losses       int `json:"losses"`
		OTLosses     int `json:"otLosses"`
		Points       int `json:"points"`
		GoalFor      int `json:"goalFor"`
		GoalAgainst  int `json:"goalAgainst"`
		GamesPlayed  int `json:"gamesPlayed"`
	} `json:"standings"`
}

// StandingRow is one team's record from the standings.
type StandingRow struct {
	Wins        int
	Losses      int
	OTLosses    int
	Points      int
	GoalFor     int
	GoalAgainst int
}

// Standings returns every team's current record keyed by abbreviation.
func (c *Client) Standings(ctx context.Context) (map[string]StandingRow, error) {
	var resp standingsResponse
	if err := c.getJSON(ctx, c.baseURL+"/standings/now", &resp); err != nil {
		return nil, err
	}

	rows := make(map[string]StandingRow, len(resp.Standings))
	for _, s := range resp.Standings {
		rows[s.TeamAbbrev.Default] = StandingRow{
			Wins:        s.Wins,
			Losses:      s.Losses,
			OTLosses:    s.OTLosses,
			Points:      s.Points,
			GoalFor:     s.GoalFor,
			GoalAgainst: s.GoalAgainst,
		}
	}
	return rows, nil
}

type clubScheduleResponse struct {
	Games []apiGameInfo `json:"games"`
}

// ClubGame is one game from a team's schedule, seen from that team's side.
type ClubGame struct {
	GameID       int64
	Date         string
	State        string
	Home         bool
	Opponent     string
	GoalsFor     int
	GoalsAgainst int
	OTFinish     bool
}

// ClubSchedule fetches a team's schedule. season is a season key like
// "20252026", or "now" for the current one.
func (c *Client) ClubSchedule(ctx context.Context, team, season string) ([]ClubGame, error) {
	var resp clubScheduleResponse
	url := fmt.Sprintf("%s/club-schedule-season/%s/%s", c.baseURL, team, season)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	games := make([]ClubGame, 0, len(resp.Games))
	for _, g := range resp.Games {
		home := g.HomeTeam.Abbrev == team
		cg := ClubGame{
			GameID:   g.ID,
			Date:     g.GameDate,
			State:    g.GameState,
			Home:     home,
			OTFinish: g.GameOutcome.LastPeriodType == "OT" || g.GameOutcome.LastPeriodType == "SO",
		}
		if home {
			cg.Opponent = g.AwayTeam.Abbrev
			cg.GoalsFor = g.HomeTeam.Score
			cg.GoalsAgainst = g.AwayTeam.Score
		} else {
			cg.Opponent = g.HomeTeam.Abbrev
			cg.GoalsFor = g.AwayTeam.Score
			cg.GoalsAgainst = g.HomeTeam.Score
		}
		games = append(games, cg)
	}
	return games, nil
}

func (cg ClubGame) completed() bool {
	return cg.State == "OFF" || cg.State == "FINAL"
}

// SeasonKeys returns the current and previous NHL season identifiers
// for a given instant. Seasons roll over in September.
func SeasonKeys(now time.Time) (current, previous string) {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return fmt.Sprintf("%d%d", year, year+1), fmt.Sprintf("%d%d", year-1, year)
}
