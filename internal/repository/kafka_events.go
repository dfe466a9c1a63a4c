package repository

import (
	"context"
	"strconv"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/pkg/kafka"
)

const (
	eventPredictionLocked = "prediction.locked"
	eventResultGraded     = "result.graded"
)

type predictionEvent struct {
	Type       string                  `json:"type"`
	EmittedAt  time.Time               `json:"emitted_at"`
	Prediction models.LockedPrediction `json:"prediction"`
}

// KafkaEventPublisher emits prediction lifecycle events keyed by game
// id, so all events for one game land on the same partition.
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

func NewKafkaEventPublisher(producer *kafka.Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) PredictionLocked(ctx context.Context, row models.LockedPrediction) error {
	return p.publish(ctx, eventPredictionLocked, row)
}

func (p *KafkaEventPublisher) ResultGraded(ctx context.Context, row models.LockedPrediction) error {
	return p.publish(ctx, eventResultGraded, row)
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType string, row models.LockedPrediction) error {
	return p.producer.Publish(ctx, strconv.FormatInt(row.GameID, 10), predictionEvent{
		Type:       eventType,
		EmittedAt:  time.Now().UTC(),
		Prediction: row,
	})
}
