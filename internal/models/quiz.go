package models

import (
	"fmt"
	"time"

	"smart-quiz-service/internal/apperr"
)

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTrueFalse      QuestionKind = "true_false"
	KindFillBlank      QuestionKind = "fill_blank"
	KindShortAnswer    QuestionKind = "short_answer"
	KindDescriptive    QuestionKind = "descriptive"
)

// KnownKinds lists every question kind the evaluator can grade.
var KnownKinds = map[QuestionKind]bool{
	KindMultipleChoice: true,
	KindTrueFalse:      true,
	KindFillBlank:      true,
	KindShortAnswer:    true,
	KindDescriptive:    true,
}

type Question struct {
	ID              string       `bson:"id" json:"id"`
	Kind            QuestionKind `bson:"kind" json:"kind"`
	Prompt          string       `bson:"prompt" json:"prompt"`
	Options         []string     `bson:"options,omitempty" json:"options,omitempty"`
	CorrectOption   int          `bson:"correct_option,omitempty" json:"correct_option,omitempty"`
	CorrectBool     bool         `bson:"correct_bool,omitempty" json:"correct_bool,omitempty"`
	ReferenceAnswer string       `bson:"reference_answer,omitempty" json:"reference_answer,omitempty"`
	Marks           int          `bson:"marks" json:"marks"`
}

type Quiz struct {
	ID               string     `bson:"_id,omitempty" json:"id"`
	Title            string     `bson:"title" json:"title"`
	Questions        []Question `bson:"questions" json:"questions"`
	TimeLimitMinutes int        `bson:"time_limit_minutes" json:"time_limit_minutes"`
	Status           string     `bson:"status" json:"status"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

// Validate rejects malformed quizzes before any attempt may reference them.
// A quiz that passes here is safe to score: every question has a known kind
// and a positive mark value.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return &apperr.ConfigurationError{Reason: "quiz must have at least one question"}
	}
	seen := make(map[string]bool, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			return &apperr.ConfigurationError{Reason: fmt.Sprintf("question %d has no id", i)}
		}
		if seen[question.ID] {
			return &apperr.ConfigurationError{Reason: fmt.Sprintf("duplicate question id %q", question.ID)}
		}
		seen[question.ID] = true
		if !KnownKinds[question.Kind] {
			return &apperr.ConfigurationError{Reason: fmt.Sprintf("question %q has unknown kind %q", question.ID, question.Kind)}
		}
		if question.Marks <= 0 {
			return &apperr.ConfigurationError{Reason: fmt.Sprintf("question %q must have positive marks", question.ID)}
		}
		if question.Kind == KindMultipleChoice {
			if len(question.Options) == 0 {
				return &apperr.ConfigurationError{Reason: fmt.Sprintf("question %q has no options", question.ID)}
			}
			if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options) {
				return &apperr.ConfigurationError{Reason: fmt.Sprintf("question %q correct option out of range", question.ID)}
			}
		}
	}
	return nil
}

// TotalMarks is the maximum obtainable score for the quiz.
func (q *Quiz) TotalMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}
