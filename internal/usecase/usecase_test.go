package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/internal/services/engine"
	"HockeyQuant/pkg/cache"
	"HockeyQuant/pkg/logger"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    int32
	matchups map[string][]models.Matchup
	err      error
}

func (f *fakeSource) Matchups(_ context.Context, date string) ([]models.Matchup, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matchups[date], nil
}

func (f *fakeSource) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type noopMetrics struct{}

func (noopMetrics) ComputeObserved(string, time.Duration) {}
func (noopMetrics) CacheHit()                             {}
func (noopMetrics) CacheMiss()                            {}
func (noopMetrics) LocksWritten(int)                      {}
func (noopMetrics) Graded(int)                            {}
func (noopMetrics) UpstreamError(string)                  {}

type memStore struct {
	mu   sync.Mutex
	rows map[int64]*models.LockedPrediction
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]*models.LockedPrediction)}
}

func (s *memStore) InsertLocked(_ context.Context, p models.LockedPrediction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[p.GameID]; exists {
		return false, nil
	}
	s.rows[p.GameID] = &p
	return true, nil
}

func (s *memStore) FillResult(_ context.Context, gameID int64, homeGoals, awayGoals int, winner string, correct bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[gameID]
	if !ok || row.Correct != nil {
		return false, nil
	}
	row.HomeFinal = &homeGoals
	row.AwayFinal = &awayGoals
	row.ActualWinner = &winner
	row.Correct = &correct
	return true, nil
}

func (s *memStore) UngradedForDate(_ context.Context, date string) ([]models.LockedPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LockedPrediction
	for _, row := range s.rows {
		if row.GameDate == date && row.Correct == nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *memStore) UngradedDates(_ context.Context, before string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	for _, row := range s.rows {
		if row.Correct == nil && row.GameDate < before {
			seen[row.GameDate] = true
		}
	}
	var dates []string
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *memStore) Graded(_ context.Context, f models.AccuracyFilters) ([]models.LockedPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LockedPrediction
	for _, row := range s.rows {
		if row.Correct == nil {
			continue
		}
		if f.StartDate != "" && row.GameDate < f.StartDate {
			continue
		}
		if f.EndDate != "" && row.GameDate > f.EndDate {
			continue
		}
		if f.Team != "" && row.Pick != f.Team {
			continue
		}
		if f.Confidence != "" && row.Confidence != f.Confidence {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (s *memStore) GradedOrdered(_ context.Context) ([]models.LockedPrediction, error) {
	rows, err := s.Graded(context.Background(), models.AccuracyFilters{})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GameDate != rows[j].GameDate {
			return rows[i].GameDate < rows[j].GameDate
		}
		return rows[i].GameID < rows[j].GameID
	})
	return rows, nil
}

type fakeResults struct {
	finals map[string][]models.FinalScore
	err    error
}

func (f *fakeResults) FinalScores(_ context.Context, date string) ([]models.FinalScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.finals[date], nil
}

func snapshotWithGoalie(abbrev string) models.TeamSnapshot {
	return models.TeamSnapshot{
		Abbrev:    abbrev,
		XGFShare:  0.5,
		GFShare:   0.5,
		XGAShare:  0.5,
		GAShare:   0.5,
		PointsPct: 0.5,
		WinPct:    0.5,
		Goalies: []models.GoalieSnapshot{
			{Name: abbrev + " G1", GSAx: 5, SavePct: 0.915, GAA: 2.6, Starter: true},
			{Name: abbrev + " G2", GSAx: -1, SavePct: 0.902, GAA: 3.0},
		},
	}
}

func matchupAt(gameID int64, date string, start time.Time, home, away string) models.Matchup {
	return models.Matchup{
		GameID:    gameID,
		GameDate:  date,
		StartTime: start,
		Home:      snapshotWithGoalie(home),
		Away:      snapshotWithGoalie(away),
	}
}

func newTestCache(source repository.SnapshotSource) *PredictionCache {
	mem := cache.NewMemoryCache()
	return NewPredictionCache(source, engine.New(), mem, noopMetrics{}, logger.Nop())
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	const date = "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	source := &fakeSource{matchups: map[string][]models.Matchup{
		date: {matchupAt(1, date, start, "TOR", "MTL")},
	}}
	pc := newTestCache(source)

	var wg sync.WaitGroup
	errs := make(chan error, 25)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pc.GetOrCompute(context.Background(), date)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
	}

	if got := source.callCount(); got != 1 {
		t.Fatalf("source called %d times, want 1", got)
	}
}

func TestGetOrComputeCachesEmptySlate(t *testing.T) {
	const date = "2026-07-04"
	source := &fakeSource{matchups: map[string][]models.Matchup{}}
	pc := newTestCache(source)

	entry, err := pc.GetOrCompute(context.Background(), date)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if !entry.NoGames {
		t.Fatal("expected NoGames entry")
	}

	if _, err := pc.GetOrCompute(context.Background(), date); err != nil {
		t.Fatalf("second GetOrCompute: %v", err)
	}
	if got := source.callCount(); got != 1 {
		t.Fatalf("source called %d times, want 1 (empty slate must be cached)", got)
	}
}

func TestGetOrComputeUpstreamFailureNotCached(t *testing.T) {
	const date = "2026-01-15"
	source := &fakeSource{err: errors.New("boom")}
	pc := newTestCache(source)

	_, err := pc.GetOrCompute(context.Background(), date)
	if !errors.Is(err, repository.ErrScheduleUnavailable) {
		t.Fatalf("err = %v, want ErrScheduleUnavailable", err)
	}

	_, err = pc.GetOrCompute(context.Background(), date)
	if !errors.Is(err, repository.ErrScheduleUnavailable) {
		t.Fatalf("second err = %v", err)
	}
	if got := source.callCount(); got != 2 {
		t.Fatalf("source called %d times, want 2 (failures must not be cached)", got)
	}
}

func TestPeekNeverComputes(t *testing.T) {
	const date = "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	source := &fakeSource{matchups: map[string][]models.Matchup{
		date: {matchupAt(1, date, start, "TOR", "MTL")},
	}}
	pc := newTestCache(source)
	ctx := context.Background()

	entry, err := pc.Peek(ctx, date)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if entry != nil {
		t.Fatal("cold date returned an entry")
	}
	if got := source.callCount(); got != 0 {
		t.Fatalf("peek hit the source %d times, want 0", got)
	}

	if _, err := pc.GetOrCompute(ctx, date); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	entry, err = pc.Peek(ctx, date)
	if err != nil {
		t.Fatalf("Peek after compute: %v", err)
	}
	if entry == nil || len(entry.Predictions) != 1 {
		t.Fatalf("entry after compute = %+v", entry)
	}
}

func TestComputeWithOverridesLeavesCanonicalAlone(t *testing.T) {
	const date = "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	source := &fakeSource{matchups: map[string][]models.Matchup{
		date: {matchupAt(1, date, start, "TOR", "MTL")},
	}}
	pc := newTestCache(source)
	ctx := context.Background()

	canonical, err := pc.GetOrCompute(ctx, date)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	override, err := pc.ComputeWithOverrides(ctx, date, map[string]string{"TOR": "TOR G2"})
	if err != nil {
		t.Fatalf("ComputeWithOverrides: %v", err)
	}
	if override.Predictions[0].Home.GoalieName != "TOR G2" {
		t.Fatalf("override goalie = %s", override.Predictions[0].Home.GoalieName)
	}

	again, err := pc.GetOrCompute(ctx, date)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if again.Predictions[0].Home.GoalieName != canonical.Predictions[0].Home.GoalieName {
		t.Fatal("override computation leaked into the canonical entry")
	}
	if !again.ComputedAt.Equal(canonical.ComputedAt) {
		t.Fatal("canonical entry was recomputed")
	}
}

func TestComputeWithOverridesUnknownGoalie(t *testing.T) {
	const date = "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	source := &fakeSource{matchups: map[string][]models.Matchup{
		date: {matchupAt(1, date, start, "TOR", "MTL")},
	}}
	pc := newTestCache(source)

	_, err := pc.ComputeWithOverrides(context.Background(), date, map[string]string{"TOR": "Nobody"})
	var unknown *engine.UnknownGoalieError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownGoalieError", err)
	}
}

func newTestScheduler(source repository.SnapshotSource, store repository.RecordStore, at time.Time) *LockScheduler {
	pc := newTestCache(source)
	s := NewLockScheduler(pc, store, nil, nil, noopMetrics{}, logger.Nop())
	s.now = func() time.Time { return at }
	return s
}

func TestStorePredictionsLockWindow(t *testing.T) {
	const date = "2026-01-15"
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC) // official at 18:45
	source := &fakeSource{matchups: map[string][]models.Matchup{
		date: {matchupAt(42, date, start, "TOR", "MTL")},
	}}
	store := newMemStore()
	ctx := context.Background()

	early := newTestScheduler(source, store, time.Date(2026, 1, 15, 18, 44, 59, 0, time.UTC))
	n, err := early.StorePredictions(ctx, date)
	if err != nil {
		t.Fatalf("StorePredictions: %v", err)
	}
	if n != 0 {
		t.Fatalf("locked %d before the window, want 0", n)
	}

	atLock := newTestScheduler(source, store, time.Date(2026, 1, 15, 18, 45, 0, 0, time.UTC))
	n, err = atLock.StorePredictions(ctx, date)
	if err != nil {
		t.Fatalf("StorePredictions: %v", err)
	}
	if n != 1 {
		t.Fatalf("locked %d at the window, want 1", n)
	}

	later := newTestScheduler(source, store, time.Date(2026, 1, 15, 18, 46, 0, 0, time.UTC))
	n, err = later.StorePredictions(ctx, date)
	if err != nil {
		t.Fatalf("StorePredictions: %v", err)
	}
	if n != 0 {
		t.Fatalf("relock wrote %d rows, want 0", n)
	}
}

func TestStorePredictionsNoGames(t *testing.T) {
	source := &fakeSource{matchups: map[string][]models.Matchup{}}
	s := newTestScheduler(source, newMemStore(), time.Now())
	n, err := s.StorePredictions(context.Background(), "2026-07-04")
	if err != nil {
		t.Fatalf("StorePredictions: %v", err)
	}
	if n != 0 {
		t.Fatalf("locked %d on an empty slate", n)
	}
}

func lockedRow(gameID int64, date, home, away, pick, confidence string) models.LockedPrediction {
	return models.LockedPrediction{
		GameID:     gameID,
		GameDate:   date,
		HomeTeam:   home,
		AwayTeam:   away,
		Pick:       pick,
		Confidence: confidence,
		LockedAt:   time.Now().UTC(),
	}
}

func TestUpdateResultsGradesOnce(t *testing.T) {
	const date = "2026-01-15"
	store := newMemStore()
	ctx := context.Background()
	if _, err := store.InsertLocked(ctx, lockedRow(1, date, "TOR", "MTL", "TOR", models.ConfidenceStrong)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertLocked(ctx, lockedRow(2, date, "BOS", "NYR", "BOS", models.ConfidenceClose)); err != nil {
		t.Fatal(err)
	}

	results := &fakeResults{finals: map[string][]models.FinalScore{
		date: {
			{GameID: 1, HomeGoals: 4, AwayGoals: 2, Winner: "TOR"},
			{GameID: 2, HomeGoals: 1, AwayGoals: 3, Winner: "NYR"},
		},
	}}
	tracker := NewAccuracyTracker(store, results, nil, noopMetrics{}, logger.Nop())

	n, err := tracker.UpdateResults(ctx, date)
	if err != nil {
		t.Fatalf("UpdateResults: %v", err)
	}
	if n != 2 {
		t.Fatalf("graded %d, want 2", n)
	}

	row := store.rows[1]
	if row.Correct == nil || !*row.Correct {
		t.Fatal("game 1 should be graded correct")
	}
	row = store.rows[2]
	if row.Correct == nil || *row.Correct {
		t.Fatal("game 2 should be graded incorrect")
	}

	n, err = tracker.UpdateResults(ctx, date)
	if err != nil {
		t.Fatalf("second UpdateResults: %v", err)
	}
	if n != 0 {
		t.Fatalf("regrade touched %d rows, want 0", n)
	}
}

func TestUpdateResultsSkipsUnfinishedGames(t *testing.T) {
	const date = "2026-01-15"
	store := newMemStore()
	ctx := context.Background()
	if _, err := store.InsertLocked(ctx, lockedRow(1, date, "TOR", "MTL", "TOR", models.ConfidenceClose)); err != nil {
		t.Fatal(err)
	}

	results := &fakeResults{finals: map[string][]models.FinalScore{date: {}}}
	tracker := NewAccuracyTracker(store, results, nil, noopMetrics{}, logger.Nop())

	n, err := tracker.UpdateResults(ctx, date)
	if err != nil {
		t.Fatalf("UpdateResults: %v", err)
	}
	if n != 0 {
		t.Fatalf("graded %d without finals, want 0", n)
	}
	if store.rows[1].Correct != nil {
		t.Fatal("row graded without a final score")
	}
}

func TestUpdateAllPendingWalksPastDates(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	if _, err := store.InsertLocked(ctx, lockedRow(1, "2026-01-13", "TOR", "MTL", "TOR", models.ConfidenceClose)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertLocked(ctx, lockedRow(2, "2026-01-14", "BOS", "NYR", "NYR", models.ConfidenceModerate)); err != nil {
		t.Fatal(err)
	}

	results := &fakeResults{finals: map[string][]models.FinalScore{
		"2026-01-13": {{GameID: 1, HomeGoals: 2, AwayGoals: 1, Winner: "TOR"}},
		"2026-01-14": {{GameID: 2, HomeGoals: 5, AwayGoals: 2, Winner: "BOS"}},
	}}
	tracker := NewAccuracyTracker(store, results, nil, noopMetrics{}, logger.Nop())
	tracker.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	total, touched, err := tracker.UpdateAllPending(ctx)
	if err != nil {
		t.Fatalf("UpdateAllPending: %v", err)
	}
	if total != 2 {
		t.Fatalf("graded %d, want 2", total)
	}
	if len(touched) != 2 || touched[0] != "2026-01-13" || touched[1] != "2026-01-14" {
		t.Fatalf("touched = %v", touched)
	}
}

func gradedRow(gameID int64, date, confidence string, correct bool) models.LockedPrediction {
	row := lockedRow(gameID, date, "TOR", "MTL", "TOR", confidence)
	winner := "TOR"
	if !correct {
		winner = "MTL"
	}
	hg, ag := 3, 2
	row.HomeFinal = &hg
	row.AwayFinal = &ag
	row.ActualWinner = &winner
	row.Correct = &correct
	return row
}

func seedGraded(t *testing.T, store *memStore, rows ...models.LockedPrediction) {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	for i := range rows {
		row := rows[i]
		store.rows[row.GameID] = &row
	}
}

func TestStatsByTier(t *testing.T) {
	store := newMemStore()
	seedGraded(t, store,
		gradedRow(1, "2026-01-10", models.ConfidenceStrong, true),
		gradedRow(2, "2026-01-11", models.ConfidenceStrong, true),
		gradedRow(3, "2026-01-12", models.ConfidenceClose, false),
		gradedRow(4, "2026-01-13", models.ConfidenceModerate, true),
	)
	tracker := NewAccuracyTracker(store, &fakeResults{}, nil, noopMetrics{}, logger.Nop())

	stats, err := tracker.Stats(context.Background(), models.AccuracyFilters{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 || stats.Correct != 3 {
		t.Fatalf("got %d/%d, want 3/4", stats.Correct, stats.Total)
	}
	if stats.Accuracy != 0.75 {
		t.Fatalf("Accuracy = %v, want 0.75", stats.Accuracy)
	}
	strong := stats.ByConfidence[models.ConfidenceStrong]
	if strong.Total != 2 || strong.Correct != 2 || strong.Accuracy != 1.0 {
		t.Fatalf("STRONG = %+v", strong)
	}
	closeTier := stats.ByConfidence[models.ConfidenceClose]
	if closeTier.Total != 1 || closeTier.Correct != 0 {
		t.Fatalf("CLOSE = %+v", closeTier)
	}
}

func TestStatsConfidenceFilter(t *testing.T) {
	store := newMemStore()
	seedGraded(t, store,
		gradedRow(1, "2026-01-10", models.ConfidenceStrong, true),
		gradedRow(2, "2026-01-11", models.ConfidenceClose, false),
	)
	tracker := NewAccuracyTracker(store, &fakeResults{}, nil, noopMetrics{}, logger.Nop())

	stats, err := tracker.Stats(context.Background(), models.AccuracyFilters{Confidence: models.ConfidenceStrong})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.Correct != 1 {
		t.Fatalf("got %d/%d, want 1/1", stats.Correct, stats.Total)
	}
}

func TestStatsTeamFilterMatchesPick(t *testing.T) {
	store := newMemStore()
	// TOR hosts but MTL is the pick; a team filter keys on the pick,
	// not on who played.
	pickMTL := lockedRow(1, "2026-01-10", "TOR", "MTL", "MTL", models.ConfidenceClose)
	hg, ag := 3, 2
	winner := "TOR"
	wrong := false
	pickMTL.HomeFinal, pickMTL.AwayFinal = &hg, &ag
	pickMTL.ActualWinner = &winner
	pickMTL.Correct = &wrong
	seedGraded(t, store,
		pickMTL,
		gradedRow(2, "2026-01-11", models.ConfidenceClose, true),
	)
	tracker := NewAccuracyTracker(store, &fakeResults{}, nil, noopMetrics{}, logger.Nop())

	stats, err := tracker.Stats(context.Background(), models.AccuracyFilters{Team: "TOR"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.Correct != 1 {
		t.Fatalf("team=TOR got %d/%d, want the single TOR pick", stats.Correct, stats.Total)
	}

	stats, err = tracker.Stats(context.Background(), models.AccuracyFilters{Team: "MTL"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.Correct != 0 {
		t.Fatalf("team=MTL got %d/%d, want the single MTL pick", stats.Correct, stats.Total)
	}
}

func TestTrendRollingEqualsCumulativeForWideWindow(t *testing.T) {
	store := newMemStore()
	seedGraded(t, store,
		gradedRow(1, "2026-01-10", models.ConfidenceClose, true),
		gradedRow(2, "2026-01-11", models.ConfidenceClose, false),
		gradedRow(3, "2026-01-12", models.ConfidenceClose, true),
	)
	tracker := NewAccuracyTracker(store, &fakeResults{}, nil, noopMetrics{}, logger.Nop())

	points, err := tracker.Trend(context.Background(), 50)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points", len(points))
	}
	for i, pt := range points {
		if pt.RollingAccuracy != pt.CumulativeAccuracy {
			t.Fatalf("point %d: rolling %v != cumulative %v", i, pt.RollingAccuracy, pt.CumulativeAccuracy)
		}
	}
}

func TestTrendRollingWindow(t *testing.T) {
	store := newMemStore()
	// W L L W: with window 2 the last point sees L W.
	seedGraded(t, store,
		gradedRow(1, "2026-01-10", models.ConfidenceClose, true),
		gradedRow(2, "2026-01-11", models.ConfidenceClose, false),
		gradedRow(3, "2026-01-12", models.ConfidenceClose, false),
		gradedRow(4, "2026-01-13", models.ConfidenceClose, true),
	)
	tracker := NewAccuracyTracker(store, &fakeResults{}, nil, noopMetrics{}, logger.Nop())

	points, err := tracker.Trend(context.Background(), 2)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	last := points[len(points)-1]
	if last.RollingAccuracy != 0.5 {
		t.Fatalf("rolling = %v, want 0.5", last.RollingAccuracy)
	}
	if last.CumulativeAccuracy != 0.5 {
		t.Fatalf("cumulative = %v, want 0.5", last.CumulativeAccuracy)
	}
	if points[2].RollingAccuracy != 0 {
		t.Fatalf("third rolling = %v, want 0", points[2].RollingAccuracy)
	}
}
