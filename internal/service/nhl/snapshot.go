package nhl

import (
	"context"
	"sort"
	"strings"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/services/factors"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/util"
)

const (
	recentGameWindow    = 10
	starterMinGames     = 5
	defaultPPPct        = 0.20
	defaultPKPct        = 0.80
	defaultSTSituations = 3.0
	defaultImportance   = 15
)

// SnapshotBuilder assembles scoring-ready matchups from the NHL API,
// MoneyPuck dumps, and the injury feed.
type SnapshotBuilder struct {
	client *Client
	stats  *StatsProvider
	log    *logger.Logger
	now    func() time.Time
}

func NewSnapshotBuilder(client *Client, stats *StatsProvider, log *logger.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		client: client,
		stats:  stats,
		log:    log,
		now:    time.Now,
	}
}

// Matchups builds one Matchup per game on date. An empty slate returns
// an empty slice with no error.
func (b *SnapshotBuilder) Matchups(ctx context.Context, date string) ([]models.Matchup, error) {
	games, err := b.client.Games(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}

	standings, err := b.client.Standings(ctx)
	if err != nil {
		return nil, err
	}
	bundle, err := b.stats.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Injury data is an enrichment. Losing it degrades the injury
	// factor to neutral, it does not fail the slate.
	injuries := b.fetchInjuries(ctx)

	schedules := newScheduleCache(b.client)
	matchups := make([]models.Matchup, 0, len(games))

	for _, g := range games {
		home := b.buildSnapshot(ctx, g.Home, g.Away, false, date, standings, bundle, injuries, schedules)
		away := b.buildSnapshot(ctx, g.Away, g.Home, true, date, standings, bundle, injuries, schedules)
		matchups = append(matchups, models.Matchup{
			GameID:    g.GameID,
			GameDate:  g.GameDate,
			StartTime: g.StartTime,
			Venue:     g.Venue,
			Home:      home,
			Away:      away,
		})
	}
	return matchups, nil
}

func (b *SnapshotBuilder) buildSnapshot(
	ctx context.Context,
	team, opp string,
	isAway bool,
	date string,
	standings map[string]StandingRow,
	bundle *statsBundle,
	injuries map[string][]string,
	schedules *scheduleCache,
) models.TeamSnapshot {
	snap := models.TeamSnapshot{
		Abbrev:     team,
		Name:       TeamName(team),
		Division:   DivisionOf(team),
		Conference: ConferenceOf(team),
		IsAway:     isAway,
		XGFShare:   0.5,
		GFShare:    0.5,
		XGAShare:   0.5,
		GAShare:    0.5,
		PointsPct:  0.5,
		WinPct:     0.5,
	}

	if row, ok := standings[team]; ok {
		total := row.Wins + row.Losses + row.OTLosses
		if total > 0 {
			snap.GamesPlayed = total
			snap.WinPct = (float64(row.Wins) + float64(row.OTLosses)*0.5) / float64(total)
			snap.PointsPct = float64(row.Points) / float64(total*2)
			snap.GFPerGame = float64(row.GoalFor) / float64(total)
			snap.GAPerGame = float64(row.GoalAgainst) / float64(total)
		}
		if gfga := row.GoalFor + row.GoalAgainst; gfga > 0 {
			snap.GFShare = float64(row.GoalFor) / float64(gfga)
			snap.GAShare = float64(row.GoalAgainst) / float64(gfga)
		}
	}

	if ts, ok := bundle.teamsAll[team]; ok {
		if xg := ts.XGoalsFor + ts.XGoalsAgainst; xg > 0 {
			snap.XGFShare = ts.XGoalsFor / xg
			snap.XGAShare = ts.XGoalsAgainst / xg
		}
	}

	b.fillSpecialTeams(&snap, team, bundle)
	b.fillGoalies(&snap, team, bundle)

	recent := schedules.recentGames(ctx, b, team, date)
	snap.RecentGames = recent
	if len(recent) > 0 {
		last := recent[len(recent)-1]
		snap.RestDays = last.DaysAgo - 1
		snap.BackToBack = snap.RestDays == 0
		snap.LastGameAway = !last.Home
	}

	if isAway {
		fromTZ := TimezoneOf(team)
		if len(recent) > 0 && snap.LastGameAway {
			fromTZ = TimezoneOf(schedules.lastOpponent(team))
		}
		snap.TimezoneJump = TimezoneOf(opp) - fromTZ
	}

	snap.Meetings = schedules.meetings(ctx, b, team, opp, date)
	snap.Injuries = b.weighInjuries(team, injuries[team], bundle)

	return snap
}

func (b *SnapshotBuilder) fillSpecialTeams(snap *models.TeamSnapshot, team string, bundle *statsBundle) {
	all, okAll := bundle.teamsAll[team]
	pp, okPP := bundle.teamsPP[team]
	pk, okPK := bundle.teamsPK[team]
	if !okAll || !okPP || !okPK {
		return
	}

	snap.HasSpecialTeams = true
	snap.PowerPlayPct = defaultPPPct
	snap.PenaltyKillPct = defaultPKPct
	snap.PPSituationsPG = defaultSTSituations
	snap.PKSituationsPG = defaultSTSituations

	if all.PenaltiesAgainst > 0 {
		snap.PowerPlayPct = pp.GoalsFor / all.PenaltiesAgainst
	}
	if all.PenaltiesFor > 0 {
		snap.PenaltyKillPct = 1 - pk.GoalsAgainst/all.PenaltiesFor
	}
	if all.GamesPlayed > 0 {
		// penaltiesAgainst are penalties drawn, so power plays.
		snap.PPSituationsPG = all.PenaltiesAgainst / all.GamesPlayed
		snap.PKSituationsPG = all.PenaltiesFor / all.GamesPlayed
	}
}

func (b *SnapshotBuilder) fillGoalies(snap *models.TeamSnapshot, team string, bundle *statsBundle) {
	rows := bundle.goalies[team]
	if len(rows) == 0 {
		return
	}

	sorted := make([]GoalieRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GamesPlayed > sorted[j].GamesPlayed
	})

	// Starter is the most used qualified goalie; fall back to raw
	// usage when nobody clears the bar yet.
	starterIdx := -1
	for i, g := range sorted {
		if g.GamesPlayed >= starterMinGames {
			starterIdx = i
			break
		}
	}
	if starterIdx == -1 {
		starterIdx = 0
	}

	snap.Goalies = make([]models.GoalieSnapshot, 0, len(sorted))
	for i, g := range sorted {
		status := models.GoalieExpected
		if i == starterIdx && g.GamesPlayed >= starterMinGames {
			status = models.GoalieConfirmed
		}
		snap.Goalies = append(snap.Goalies, models.GoalieSnapshot{
			Name:        g.Name,
			GSAx:        g.GSAx(),
			SavePct:     g.SavePct(),
			GAA:         g.GAA(),
			GamesPlayed: g.GamesPlayed,
			Starter:     i == starterIdx,
			Status:      status,
		})
	}
}

func (b *SnapshotBuilder) weighInjuries(team string, names []string, bundle *statsBundle) []models.InjuredPlayer {
	if len(names) == 0 {
		return nil
	}

	skaters := bundle.skaters[team]
	out := make([]models.InjuredPlayer, 0, len(names))
	for _, name := range names {
		out = append(out, models.InjuredPlayer{
			Name:   name,
			Weight: injuryWeight(name, skaters),
		})
	}
	return out
}

// injuryWeight matches an injured name against the skater table and
// scores the player's importance. Unmatched names get a flat weight.
func injuryWeight(name string, skaters []SkaterRow) float64 {
	lower := strings.ToLower(name)
	for _, s := range skaters {
		if strings.Contains(strings.ToLower(s.Name), lower) {
			return factors.PlayerImportance(s.Points(), s.IceTime/3600, s.XGoalsFor)
		}
	}

	// Last-name fallback for feeds that abbreviate first names.
	parts := strings.Fields(lower)
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		for _, s := range skaters {
			if strings.Contains(strings.ToLower(s.Name), last) {
				return factors.PlayerImportance(s.Points(), s.IceTime/3600, s.XGoalsFor)
			}
		}
	}
	return defaultImportance
}

type injuryFeedEntry struct {
	Team    string   `json:"team"`
	Players []string `json:"players"`
}

func (b *SnapshotBuilder) fetchInjuries(ctx context.Context) map[string][]string {
	if b.client.injuryURL == "" {
		return nil
	}

	var feed []injuryFeedEntry
	if err := b.client.getJSON(ctx, b.client.injuryURL, &feed); err != nil {
		b.log.Warn("injury feed unavailable", logger.Error(err))
		return nil
	}

	out := make(map[string][]string, len(feed))
	for _, entry := range feed {
		out[entry.Team] = entry.Players
	}
	return out
}

// scheduleCache memoizes club schedules for the duration of one
// Matchups call so two teams on the same slate share fetches.
type scheduleCache struct {
	client *Client
	games  map[string][]ClubGame // key team+"/"+season
	lastOp map[string]string
}

func newScheduleCache(client *Client) *scheduleCache {
	return &scheduleCache{
		client: client,
		games:  make(map[string][]ClubGame),
		lastOp: make(map[string]string),
	}
}

func (c *scheduleCache) fetch(ctx context.Context, b *SnapshotBuilder, team, season string) []ClubGame {
	key := team + "/" + season
	if games, ok := c.games[key]; ok {
		return games
	}
	games, err := c.client.ClubSchedule(ctx, team, season)
	if err != nil {
		b.log.Warn("club schedule unavailable",
			logger.String("team", team),
			logger.String("season", season),
			logger.Error(err))
		games = nil
	}
	c.games[key] = games
	return games
}

// recentGames returns up to ten completed games before date, oldest
// first, with DaysAgo relative to date.
func (c *scheduleCache) recentGames(ctx context.Context, b *SnapshotBuilder, team, date string) []models.RecentGame {
	gameDay, err := util.ParseDate(date)
	if err != nil {
		return nil
	}

	var completed []ClubGame
	for _, g := range c.fetch(ctx, b, team, "now") {
		if g.completed() && g.Date < date {
			completed = append(completed, g)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].Date < completed[j].Date })

	if len(completed) > recentGameWindow {
		completed = completed[len(completed)-recentGameWindow:]
	}
	if len(completed) > 0 {
		c.lastOp[team] = completed[len(completed)-1].Opponent
	}

	out := make([]models.RecentGame, 0, len(completed))
	for _, g := range completed {
		played, err := util.ParseDate(g.Date)
		if err != nil {
			continue
		}
		won := g.GoalsFor > g.GoalsAgainst
		out = append(out, models.RecentGame{
			Won:          won,
			OTLoss:       !won && g.OTFinish,
			GoalsFor:     g.GoalsFor,
			GoalsAgainst: g.GoalsAgainst,
			Home:         g.Home,
			DaysAgo:      int(gameDay.Sub(played).Hours() / 24),
		})
	}
	return out
}

func (c *scheduleCache) lastOpponent(team string) string {
	return c.lastOp[team]
}

// meetings samples the head-to-head history against opp across the
// current and previous seasons, most recent first.
func (c *scheduleCache) meetings(ctx context.Context, b *SnapshotBuilder, team, opp, date string) []models.Meeting {
	current, previous := SeasonKeys(b.now())
	sample := MeetingSample(team, opp)

	var h2h []ClubGame
	for _, season := range []string{current, previous} {
		for _, g := range c.fetch(ctx, b, team, season) {
			if g.completed() && g.Opponent == opp && g.Date < date {
				h2h = append(h2h, g)
			}
		}
	}
	sort.Slice(h2h, func(i, j int) bool { return h2h[i].Date > h2h[j].Date })
	if len(h2h) > sample {
		h2h = h2h[:sample]
	}

	out := make([]models.Meeting, 0, len(h2h))
	for _, g := range h2h {
		out = append(out, models.Meeting{
			Won:      g.GoalsFor > g.GoalsAgainst,
			GoalDiff: g.GoalsFor - g.GoalsAgainst,
		})
	}
	return out
}
