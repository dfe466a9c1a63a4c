// Package repository holds the concrete storage and messaging adapters.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/pkg/config"

	_ "github.com/lib/pq"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	game_id     BIGINT PRIMARY KEY,
	game_date   DATE NOT NULL,
	home_team   VARCHAR(3) NOT NULL,
	away_team   VARCHAR(3) NOT NULL,
	pick        VARCHAR(3) NOT NULL,
	confidence  VARCHAR(10) NOT NULL,
	home_score  DOUBLE PRECISION NOT NULL,
	away_score  DOUBLE PRECISION NOT NULL,
	diff        DOUBLE PRECISION NOT NULL,
	locked_at   TIMESTAMPTZ NOT NULL,
	home_final  INT,
	away_final  INT,
	actual_winner VARCHAR(3),
	correct     BOOLEAN
);
CREATE INDEX IF NOT EXISTS idx_predictions_game_date ON predictions (game_date);
CREATE INDEX IF NOT EXISTS idx_predictions_ungraded ON predictions (game_date) WHERE correct IS NULL;
`

// PostgresRecordStore is the permanent prediction record backed by
// Postgres. Lock and grade writes are conditional so re-runs never
// overwrite a row.
type PostgresRecordStore struct {
	db *sql.DB
}

// NewPostgresRecordStore connects, pings, and ensures the schema.
func NewPostgresRecordStore(ctx context.Context, cfg *config.PostgresConfig) (*PostgresRecordStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &PostgresRecordStore{db: db}, nil
}

func (s *PostgresRecordStore) InsertLocked(ctx context.Context, p models.LockedPrediction) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions
			(game_id, game_date, home_team, away_team, pick, confidence, home_score, away_score, diff, locked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO NOTHING`,
		p.GameID, p.GameDate, p.HomeTeam, p.AwayTeam, p.Pick, p.Confidence,
		p.HomeScore, p.AwayScore, p.Diff, p.LockedAt)
	if err != nil {
		return false, fmt.Errorf("insert locked: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresRecordStore) FillResult(ctx context.Context, gameID int64, homeGoals, awayGoals int, winner string, correct bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE predictions
		SET home_final = $2, away_final = $3, actual_winner = $4, correct = $5
		WHERE game_id = $1 AND correct IS NULL`,
		gameID, homeGoals, awayGoals, winner, correct)
	if err != nil {
		return false, fmt.Errorf("fill result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const selectColumns = `
	game_id, to_char(game_date, 'YYYY-MM-DD'), home_team, away_team, pick, confidence,
	home_score, away_score, diff, locked_at,
	home_final, away_final, actual_winner, correct`

func (s *PostgresRecordStore) UngradedForDate(ctx context.Context, date string) ([]models.LockedPrediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM predictions WHERE game_date = $1 AND correct IS NULL ORDER BY game_id`,
		date)
	if err != nil {
		return nil, fmt.Errorf("select ungraded: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *PostgresRecordStore) UngradedDates(ctx context.Context, before string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT to_char(game_date, 'YYYY-MM-DD') AS d
		FROM predictions
		WHERE correct IS NULL AND game_date < $1
		ORDER BY d`,
		before)
	if err != nil {
		return nil, fmt.Errorf("select ungraded dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *PostgresRecordStore) Graded(ctx context.Context, f models.AccuracyFilters) ([]models.LockedPrediction, error) {
	conditions := []string{"correct IS NOT NULL"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.StartDate != "" {
		conditions = append(conditions, "game_date >= "+arg(f.StartDate))
	}
	if f.EndDate != "" {
		conditions = append(conditions, "game_date <= "+arg(f.EndDate))
	}
	if f.Team != "" {
		conditions = append(conditions, "pick = "+arg(f.Team))
	}
	if f.Confidence != "" {
		conditions = append(conditions, "confidence = "+arg(f.Confidence))
	}

	query := `SELECT ` + selectColumns + ` FROM predictions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY game_date, game_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select graded: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *PostgresRecordStore) GradedOrdered(ctx context.Context) ([]models.LockedPrediction, error) {
	return s.Graded(ctx, models.AccuracyFilters{})
}

func (s *PostgresRecordStore) Close() error {
	return s.db.Close()
}

func scanPredictions(rows *sql.Rows) ([]models.LockedPrediction, error) {
	var out []models.LockedPrediction
	for rows.Next() {
		var p models.LockedPrediction
		var homeGoals, awayGoals sql.NullInt64
		var winner sql.NullString
		var correct sql.NullBool

		if err := rows.Scan(
			&p.GameID, &p.GameDate, &p.HomeTeam, &p.AwayTeam, &p.Pick, &p.Confidence,
			&p.HomeScore, &p.AwayScore, &p.Diff, &p.LockedAt,
			&homeGoals, &awayGoals, &winner, &correct,
		); err != nil {
			return nil, err
		}

		if homeGoals.Valid {
			v := int(homeGoals.Int64)
			p.HomeFinal = &v
		}
		if awayGoals.Valid {
			v := int(awayGoals.Int64)
			p.AwayFinal = &v
		}
		if winner.Valid {
			v := winner.String
			p.ActualWinner = &v
		}
		if correct.Valid {
			v := correct.Bool
			p.Correct = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
