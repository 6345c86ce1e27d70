package grading

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/models"
)

var submittedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func answer(questionID string, value interface{}) models.Answer {
	return models.Answer{QuestionID: questionID, Value: value, SubmittedAt: submittedAt}
}

func singleQuestionQuiz(q models.Question) *models.Quiz {
	return &models.Quiz{ID: "quiz-1", Title: "Test Quiz", Questions: []models.Question{q}}
}

func TestEvaluatePerKindScoring(t *testing.T) {
	testCases := []struct {
		name        string
		question    models.Question
		value       interface{}
		wantAwarded int
	}{
		{
			name:        "multiple choice correct",
			question:    models.Question{ID: "q1", Kind: models.KindMultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectOption: 3, Marks: 10},
			value:       float64(3), // JSON numbers decode as float64
			wantAwarded: 10,
		},
		{
			name:        "multiple choice wrong",
			question:    models.Question{ID: "q1", Kind: models.KindMultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectOption: 3, Marks: 10},
			value:       float64(1),
			wantAwarded: 0,
		},
		{
			name:        "true false correct",
			question:    models.Question{ID: "q1", Kind: models.KindTrueFalse, CorrectBool: true, Marks: 5},
			value:       true,
			wantAwarded: 5,
		},
		{
			name:        "true false wrong",
			question:    models.Question{ID: "q1", Kind: models.KindTrueFalse, CorrectBool: true, Marks: 5},
			value:       false,
			wantAwarded: 0,
		},
		{
			name:        "fill blank exact match ignores case and whitespace",
			question:    models.Question{ID: "q1", Kind: models.KindFillBlank, ReferenceAnswer: "type", Marks: 15},
			value:       "Type ",
			wantAwarded: 15,
		},
		{
			name:        "fill blank mismatch earns half credit",
			question:    models.Question{ID: "q1", Kind: models.KindFillBlank, ReferenceAnswer: "push", Marks: 10},
			value:       "pop",
			wantAwarded: 5,
		},
		{
			name:        "short answer scales with token containment",
			question:    models.Question{ID: "q1", Kind: models.KindShortAnswer, ReferenceAnswer: "stack uses lifo order", Marks: 8},
			value:       "a stack follows lifo",
			wantAwarded: 4, // 2 of 4 reference tokens matched
		},
		{
			name:        "descriptive half similarity",
			question:    models.Question{ID: "q1", Kind: models.KindDescriptive, ReferenceAnswer: "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november oscar papa quebec romeo sierra tango", Marks: 45},
			value:       "alpha bravo charlie delta echo foxtrot golf hotel india juliett",
			wantAwarded: 36, // floor(45 * (0.6 + 0.4*0.5))
		},
		{
			name:        "descriptive empty gets nothing",
			question:    models.Question{ID: "q1", Kind: models.KindDescriptive, ReferenceAnswer: "anything", Marks: 45},
			value:       "   ",
			wantAwarded: 0,
		},
	}

	e := NewEvaluator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := singleQuestionQuiz(tc.question)
			answers := map[string]models.Answer{"q1": answer("q1", tc.value)}

			result, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if got := result.QuestionResults[0].Awarded; got != tc.wantAwarded {
				t.Errorf("Expected %d awarded, got %d", tc.wantAwarded, got)
			}
			if result.QuestionResults[0].Feedback == "" {
				t.Error("Expected non-empty feedback")
			}
		})
	}
}

func TestEvaluateSuccessFeedback(t *testing.T) {
	e := NewEvaluator()
	quiz := singleQuestionQuiz(models.Question{ID: "q1", Kind: models.KindMultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectOption: 3, Marks: 10})

	result, err := e.Evaluate(context.Background(), quiz, map[string]models.Answer{"q1": answer("q1", 3)}, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !strings.Contains(result.QuestionResults[0].Feedback, "Correct") {
		t.Errorf("Expected success feedback, got %q", result.QuestionResults[0].Feedback)
	}
}

func TestEvaluateResultShape(t *testing.T) {
	quiz := &models.Quiz{
		ID:    "quiz-1",
		Title: "Shape",
		Questions: []models.Question{
			{ID: "q1", Kind: models.KindTrueFalse, CorrectBool: true, Marks: 5},
			{ID: "q2", Kind: models.KindFillBlank, ReferenceAnswer: "heap", Marks: 10},
			{ID: "q3", Kind: models.KindMultipleChoice, Options: []string{"a", "b"}, CorrectOption: 0, Marks: 5},
		},
	}
	// q2 unanswered, plus an answer for a question not in the quiz.
	answers := map[string]models.Answer{
		"q1":    answer("q1", true),
		"q3":    answer("q3", float64(0)),
		"ghost": answer("ghost", "ignored"),
	}

	e := NewEvaluator()
	result, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if len(result.QuestionResults) != len(quiz.Questions) {
		t.Fatalf("Expected %d question results, got %d", len(quiz.Questions), len(result.QuestionResults))
	}
	for i, qr := range result.QuestionResults {
		if qr.QuestionID != quiz.Questions[i].ID {
			t.Errorf("Result %d out of quiz order: got %q, want %q", i, qr.QuestionID, quiz.Questions[i].ID)
		}
		if qr.Awarded < 0 || qr.Awarded > quiz.Questions[i].Marks {
			t.Errorf("Question %q awarded %d outside [0,%d]", qr.QuestionID, qr.Awarded, quiz.Questions[i].Marks)
		}
	}
	if result.QuestionResults[1].Awarded != 0 {
		t.Errorf("Unanswered question should score 0, got %d", result.QuestionResults[1].Awarded)
	}
	if result.QuestionResults[1].Feedback != "No answer provided." {
		t.Errorf("Unexpected feedback for skipped question: %q", result.QuestionResults[1].Feedback)
	}
	if result.TotalMarks != 20 {
		t.Errorf("Expected total marks 20, got %d", result.TotalMarks)
	}
	if result.ObtainedMarks != 10 {
		t.Errorf("Expected obtained marks 10, got %d", result.ObtainedMarks)
	}
	if result.Percentage != 50 {
		t.Errorf("Expected percentage 50, got %d", result.Percentage)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	quiz := &models.Quiz{
		ID:    "quiz-1",
		Title: "Idempotence",
		Questions: []models.Question{
			{ID: "q1", Kind: models.KindShortAnswer, ReferenceAnswer: "binary search tree", Marks: 9},
			{ID: "q2", Kind: models.KindDescriptive, ReferenceAnswer: "graphs model pairwise relations", Marks: 12},
		},
	}
	answers := map[string]models.Answer{
		"q1": answer("q1", "a binary tree"),
		"q2": answer("q2", "graphs show relations"),
	}

	e := NewEvaluator()
	first, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	second, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical results for identical inputs")
	}
}

func TestEvaluateIsolatesBadAnswers(t *testing.T) {
	quiz := &models.Quiz{
		ID:    "quiz-1",
		Title: "Isolation",
		Questions: []models.Question{
			{ID: "q1", Kind: models.KindMultipleChoice, Options: []string{"a", "b"}, CorrectOption: 1, Marks: 10},
			{ID: "q2", Kind: models.KindTrueFalse, CorrectBool: false, Marks: 10},
		},
	}
	// q1 carries a value the kind cannot interpret; q2 is fine.
	answers := map[string]models.Answer{
		"q1": answer("q1", []interface{}{"not", "an", "index"}),
		"q2": answer("q2", false),
	}

	e := NewEvaluator()
	result, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("One bad answer must not abort evaluation: %v", err)
	}
	if result.QuestionResults[0].Awarded != 0 {
		t.Errorf("Bad answer should score 0, got %d", result.QuestionResults[0].Awarded)
	}
	if result.QuestionResults[1].Awarded != 10 {
		t.Errorf("Valid answer should still be scored, got %d", result.QuestionResults[1].Awarded)
	}
}

func TestEvaluateRejectsMalformedQuiz(t *testing.T) {
	testCases := []struct {
		name string
		quiz *models.Quiz
	}{
		{"no questions", &models.Quiz{ID: "quiz-1"}},
		{"unknown kind", singleQuestionQuiz(models.Question{ID: "q1", Kind: "essay", Marks: 5})},
		{"non-positive marks", singleQuestionQuiz(models.Question{ID: "q1", Kind: models.KindTrueFalse, Marks: 0})},
	}

	e := NewEvaluator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Evaluate(context.Background(), tc.quiz, nil, "attempt-1", submittedAt)
			var cfgErr *apperr.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestDescriptiveUsesSemanticCapability(t *testing.T) {
	quiz := singleQuestionQuiz(models.Question{ID: "q1", Kind: models.KindDescriptive, ReferenceAnswer: "some reference", Marks: 10})
	answers := map[string]models.Answer{"q1": answer("q1", "totally different words")}

	e := NewEvaluator(WithSimilarity(func(_ context.Context, _, _ string) (float64, error) {
		return 1.0, nil
	}))
	result, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.QuestionResults[0].Awarded != 10 {
		t.Errorf("Expected full marks from semantic score 1.0, got %d", result.QuestionResults[0].Awarded)
	}
}

func TestDescriptiveFallsBackOnSemanticFailure(t *testing.T) {
	quiz := singleQuestionQuiz(models.Question{ID: "q1", Kind: models.KindDescriptive, ReferenceAnswer: "alpha bravo", Marks: 10})
	answers := map[string]models.Answer{"q1": answer("q1", "alpha bravo")}

	e := NewEvaluator(WithSimilarity(func(_ context.Context, _, _ string) (float64, error) {
		return 0, errors.New("nlp service unreachable")
	}))
	result, err := e.Evaluate(context.Background(), quiz, answers, "attempt-1", submittedAt)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	// Lexical fallback: containment 1.0, so 0.6 + 0.4 = full credit.
	if result.QuestionResults[0].Awarded != 10 {
		t.Errorf("Expected lexical fallback to award 10, got %d", result.QuestionResults[0].Awarded)
	}
}
