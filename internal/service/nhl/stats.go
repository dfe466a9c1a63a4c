package nhl

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// TeamSeasonStats is one team's MoneyPuck season line for one situation.
type TeamSeasonStats struct {
	GamesPlayed      float64
	XGoalsFor        float64
	XGoalsAgainst    float64
	GoalsFor         float64
	GoalsAgainst     float64
	PenaltiesFor     float64
	PenaltiesAgainst float64
}

// GoalieRow is one goaltender's season line.
type GoalieRow struct {
	Name        string
	Team        string
	GamesPlayed int
	XGoals      float64
	Goals       float64
	OnGoal      float64
	IceTime     float64
}

// GSAx is goals saved above expected.
func (g GoalieRow) GSAx() float64 {
	return g.XGoals - g.Goals
}

// SavePct derives the save percentage, defaulting when shot data is
// missing.
func (g GoalieRow) SavePct() float64 {
	if g.OnGoal <= 0 {
		return 0.900
	}
	return (g.OnGoal - g.Goals) / g.OnGoal
}

// GAA derives goals against per sixty minutes.
func (g GoalieRow) GAA() float64 {
	if g.IceTime <= 0 {
		return 3.0
	}
	return g.Goals * 3600 / g.IceTime
}

// SkaterRow is one skater's season line, enough to weigh an injury.
type SkaterRow struct {
	Name             string
	Team             string
	Goals            float64
	PrimaryAssists   float64
	SecondaryAssists float64
	IceTime          float64
	XGoalsFor        float64
}

// Points is goals plus all assists.
func (s SkaterRow) Points() float64 {
	return s.Goals + s.PrimaryAssists + s.SecondaryAssists
}

// statsBundle is one load of the MoneyPuck season dumps.
type statsBundle struct {
	teamsAll map[string]TeamSeasonStats // situation "all"
	teamsPP  map[string]TeamSeasonStats // situation "5on4"
	teamsPK  map[string]TeamSeasonStats // situation "4on5"
	goalies  map[string][]GoalieRow     // keyed by team
	skaters  map[string][]SkaterRow     // keyed by team
}

const statsRefreshInterval = time.Hour

// StatsProvider loads and caches MoneyPuck season summaries.
type StatsProvider struct {
	client *Client
	now    func() time.Time

	mu       sync.Mutex
	bundle   *statsBundle
	loadedAt time.Time
}

func NewStatsProvider(client *Client) *StatsProvider {
	return &StatsProvider{client: client, now: time.Now}
}

// Load returns the current stats bundle, refetching at most hourly.
func (p *StatsProvider) Load(ctx context.Context) (*statsBundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bundle != nil && p.now().Sub(p.loadedAt) < statsRefreshInterval {
		return p.bundle, nil
	}

	year := seasonStartYear(p.now())
	base := fmt.Sprintf("%s/seasonSummary/%d/regular", p.client.statsBaseURL, year)

	teamsRaw, err := p.client.getBytes(ctx, base+"/teams.csv")
	if err != nil {
		return nil, err
	}
	goaliesRaw, err := p.client.getBytes(ctx, base+"/goalies.csv")
	if err != nil {
		return nil, err
	}
	skatersRaw, err := p.client.getBytes(ctx, base+"/skaters.csv")
	if err != nil {
		return nil, err
	}

	bundle, err := parseStatsBundle(teamsRaw, goaliesRaw, skatersRaw)
	if err != nil {
		return nil, err
	}

	p.bundle = bundle
	p.loadedAt = p.now()
	return bundle, nil
}

func seasonStartYear(now time.Time) int {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return year
}

func parseStatsBundle(teamsRaw, goaliesRaw, skatersRaw []byte) (*statsBundle, error) {
	bundle := &statsBundle{
		teamsAll: make(map[string]TeamSeasonStats),
		teamsPP:  make(map[string]TeamSeasonStats),
		teamsPK:  make(map[string]TeamSeasonStats),
		goalies:  make(map[string][]GoalieRow),
		skaters:  make(map[string][]SkaterRow),
	}

	if err := forEachCSVRow(teamsRaw, func(row csvRow) {
		team := row.str("team")
		stats := TeamSeasonStats{
			GamesPlayed:      row.num("games_played"),
			XGoalsFor:        row.num("xGoalsFor"),
			XGoalsAgainst:    row.num("xGoalsAgainst"),
			GoalsFor:         row.num("goalsFor"),
			GoalsAgainst:     row.num("goalsAgainst"),
			PenaltiesFor:     row.num("penaltiesFor"),
			PenaltiesAgainst: row.num("penaltiesAgainst"),
		}
		switch row.str("situation") {
		case "all":
			bundle.teamsAll[team] = stats
		case "5on4":
			bundle.teamsPP[team] = stats
		case "4on5":
			bundle.teamsPK[team] = stats
		}
	}); err != nil {
		return nil, fmt.Errorf("teams csv: %w", err)
	}

	if err := forEachCSVRow(goaliesRaw, func(row csvRow) {
		if row.str("situation") != "all" {
			return
		}
		team := row.str("team")
		bundle.goalies[team] = append(bundle.goalies[team], GoalieRow{
			Name:        row.str("name"),
			Team:        team,
			GamesPlayed: int(row.num("games_played")),
			XGoals:      row.num("xGoals"),
			Goals:       row.num("goals"),
			OnGoal:      row.num("ongoal"),
			IceTime:     row.num("icetime"),
		})
	}); err != nil {
		return nil, fmt.Errorf("goalies csv: %w", err)
	}

	if err := forEachCSVRow(skatersRaw, func(row csvRow) {
		if row.str("situation") != "all" {
			return
		}
		team := row.str("team")
		bundle.skaters[team] = append(bundle.skaters[team], SkaterRow{
			Name:             row.str("name"),
			Team:             team,
			Goals:            row.num("I_F_goals"),
			PrimaryAssists:   row.num("I_F_primaryAssists"),
			SecondaryAssists: row.num("I_F_secondaryAssists"),
			IceTime:          row.num("icetime"),
			XGoalsFor:        row.num("OnIce_F_xGoals"),
		})
	}); err != nil {
		return nil, fmt.Errorf("skaters csv: %w", err)
	}

	return bundle, nil
}

type csvRow struct {
	index  map[string]int
	fields []string
}

func (r csvRow) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r csvRow) num(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0
	}
	return v
}

func forEachCSVRow(raw []byte, fn func(csvRow)) error {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		fn(csvRow{index: index, fields: fields})
	}
}
