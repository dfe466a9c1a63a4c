package repository

import (
	"context"
	"fmt"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/pkg/clickhouse"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS prediction_audit (
	game_id     Int64,
	game_date   Date,
	home_team   LowCardinality(String),
	away_team   LowCardinality(String),
	pick        LowCardinality(String),
	confidence  LowCardinality(String),
	home_score  Float64,
	away_score  Float64,
	locked_at   DateTime64(3, 'UTC')
) ENGINE = MergeTree()
ORDER BY (game_date, game_id)`

// ClickHouseAuditSink appends every locked prediction to an analytical
// table. Rows are write-only from the application's point of view.
type ClickHouseAuditSink struct {
	client *clickhouse.Client
}

func NewClickHouseAuditSink(ctx context.Context, client *clickhouse.Client) (*ClickHouseAuditSink, error) {
	if err := client.Exec(ctx, auditSchema); err != nil {
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return &ClickHouseAuditSink{client: client}, nil
}

func (s *ClickHouseAuditSink) Close() error {
	return s.client.Close()
}

func (s *ClickHouseAuditSink) RecordLocked(ctx context.Context, p models.LockedPrediction) error {
	return s.client.Exec(ctx, `
		INSERT INTO prediction_audit
			(game_id, game_date, home_team, away_team, pick, confidence, home_score, away_score, locked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.GameID, p.GameDate, p.HomeTeam, p.AwayTeam, p.Pick, p.Confidence,
		p.HomeScore, p.AwayScore, p.LockedAt)
}
