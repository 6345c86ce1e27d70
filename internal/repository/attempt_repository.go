package repository

import (
	"context"
	"errors"
	"time"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AttemptRepository persists attempts and their results. Results are
// append-only: one AttemptResult per attempt, written at submission and never
// updated.
type AttemptRepository struct {
	Attempts *mongo.Collection
	Results  *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{
		Attempts: db.Collection("attempts"),
		Results:  db.Collection("results"),
	}
}

func (r *AttemptRepository) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	_, err := r.Attempts.InsertOne(ctx, attempt)
	return err
}

func (r *AttemptRepository) FindAttempt(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Attempts.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) MarkSubmitted(ctx context.Context, id string, endTime time.Time) error {
	update := bson.M{"status": models.AttemptStatusSubmitted, "end_time": endTime}
	_, err := r.Attempts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *AttemptRepository) RecordResult(ctx context.Context, result *models.AttemptResult) error {
	_, err := r.Results.InsertOne(ctx, result)
	return err
}

func (r *AttemptRepository) FindResultByAttempt(ctx context.Context, attemptID string) (*models.AttemptResult, error) {
	var result models.AttemptResult
	err := r.Results.FindOne(ctx, bson.M{"attempt_id": attemptID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *AttemptRepository) FindResultsByUser(ctx context.Context, userID string) ([]models.AttemptResult, error) {
	cur, err := r.Results.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var results []models.AttemptResult
	for cur.Next(ctx) {
		var res models.AttemptResult
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
