package models

import "time"

type QuestionResult struct {
	QuestionID string `bson:"question_id" json:"question_id"`
	Awarded    int    `bson:"awarded" json:"awarded"`
	Marks      int    `bson:"marks" json:"marks"`
	Feedback   string `bson:"feedback" json:"feedback"`
}

// AttemptResult is created exactly once per attempt, at submission, and is
// immutable afterwards. QuestionResults holds one entry per quiz question in
// quiz order, whether or not the learner answered it.
type AttemptResult struct {
	ID              string           `bson:"_id,omitempty" json:"id"`
	AttemptID       string           `bson:"attempt_id" json:"attempt_id"`
	QuizID          string           `bson:"quiz_id" json:"quiz_id"`
	UserID          string           `bson:"user_id" json:"user_id"`
	TotalMarks      int              `bson:"total_marks" json:"total_marks"`
	ObtainedMarks   int              `bson:"obtained_marks" json:"obtained_marks"`
	Percentage      int              `bson:"percentage" json:"percentage"`
	QuestionResults []QuestionResult `bson:"question_results" json:"question_results"`
	FocusScore      int              `bson:"focus_score" json:"focus_score"`
	SubmittedAt     time.Time        `bson:"submitted_at" json:"submitted_at"`
}
