package models

import "time"

// Answer is one learner response as submitted by the client. Value is kept
// untyped because its shape depends on the question kind: an option index for
// multiple choice, a boolean for true/false, a string for the text kinds.
type Answer struct {
	QuestionID  string      `bson:"question_id" json:"question_id"`
	Value       interface{} `bson:"value" json:"value"`
	SubmittedAt time.Time   `bson:"submitted_at" json:"submitted_at"`
}

type Attempt struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	QuizID    string    `bson:"quiz_id" json:"quiz_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	StartTime time.Time `bson:"start_time" json:"start_time"`
	EndTime   time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Status    string    `bson:"status" json:"status"`
}

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
)
