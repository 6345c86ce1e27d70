package repository

import (
	"context"

	"smart-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository is the event sink for distraction telemetry. Delivery is
// at-least-once, so inserts are unordered and duplicate-key errors from
// redelivered batches are swallowed: the event id is the _id, making the
// write idempotent.
type EventRepository struct {
	Col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{Col: db.Collection("distraction_events")}
}

func (r *EventRepository) AppendEvents(ctx context.Context, attemptID string, events []models.DistractionEvent) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(events))
	for _, ev := range events {
		docs = append(docs, ev)
	}
	_, err := r.Col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *EventRepository) FindByAttempt(ctx context.Context, attemptID string) ([]models.DistractionEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"attempt_id": attemptID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.DistractionEvent
	for cur.Next(ctx) {
		var ev models.DistractionEvent
		if err := cur.Decode(&ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
