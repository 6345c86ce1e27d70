package grading

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/models"
)

const feedbackNoAnswer = "No answer provided."

// SimilarityFunc scores how close a candidate text is to a reference text,
// returning a value in [0,1]. Implementations may call out to an external
// semantic model; any error makes the evaluator fall back to the lexical
// token-containment rule.
type SimilarityFunc func(ctx context.Context, reference, candidate string) (float64, error)

// Evaluator grades a full answer set against a quiz definition. It holds no
// mutable state, so a single instance is safe to share across attempts.
type Evaluator struct {
	policy     Policy
	similarity SimilarityFunc
}

type Option func(*Evaluator)

// WithSimilarity installs an external semantic-similarity capability for
// descriptive questions.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(e *Evaluator) { e.similarity = fn }
}

func WithPolicy(p Policy) Option {
	return func(e *Evaluator) { e.policy = p }
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{policy: DefaultPolicy()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate produces the attempt result for one submission. The result holds
// exactly one QuestionResult per quiz question, in quiz order; questions the
// learner skipped score zero. Answers referencing unknown question ids are
// ignored, and an answer whose value cannot be interpreted for its question
// kind is treated as unanswered rather than aborting the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, quiz *models.Quiz, answers map[string]models.Answer, attemptID string, submittedAt time.Time) (*models.AttemptResult, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	results := make([]models.QuestionResult, 0, len(quiz.Questions))
	obtained := 0
	for _, question := range quiz.Questions {
		qr := e.scoreQuestion(ctx, question, answers)
		obtained += qr.Awarded
		results = append(results, qr)
	}

	total := quiz.TotalMarks()
	return &models.AttemptResult{
		AttemptID:       attemptID,
		QuizID:          quiz.ID,
		TotalMarks:      total,
		ObtainedMarks:   obtained,
		Percentage:      int(math.Round(float64(obtained) / float64(total) * 100)),
		QuestionResults: results,
		SubmittedAt:     submittedAt,
	}, nil
}

func (e *Evaluator) scoreQuestion(ctx context.Context, q models.Question, answers map[string]models.Answer) models.QuestionResult {
	qr := models.QuestionResult{QuestionID: q.ID, Marks: q.Marks, Feedback: feedbackNoAnswer}

	answer, ok := answers[q.ID]
	if !ok || isEmpty(answer.Value) {
		return qr
	}

	switch q.Kind {
	case models.KindMultipleChoice:
		idx, err := optionIndex(answer.Value)
		if err != nil {
			log.Printf("attempt answer for %s rejected: %v", q.ID, &apperr.ValidationError{QuestionID: q.ID, Reason: err.Error()})
			return qr
		}
		if idx == q.CorrectOption {
			qr.Awarded = q.Marks
			qr.Feedback = "Correct!"
		} else {
			qr.Feedback = "Incorrect."
		}

	case models.KindTrueFalse:
		val, err := boolValue(answer.Value)
		if err != nil {
			log.Printf("attempt answer for %s rejected: %v", q.ID, &apperr.ValidationError{QuestionID: q.ID, Reason: err.Error()})
			return qr
		}
		if val == q.CorrectBool {
			qr.Awarded = q.Marks
			qr.Feedback = "Correct!"
		} else {
			qr.Feedback = "Incorrect."
		}

	case models.KindFillBlank:
		submitted, err := stringValue(answer.Value)
		if err != nil {
			log.Printf("attempt answer for %s rejected: %v", q.ID, &apperr.ValidationError{QuestionID: q.ID, Reason: err.Error()})
			return qr
		}
		if strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.ReferenceAnswer)) {
			qr.Awarded = q.Marks
			qr.Feedback = "Correct!"
		} else {
			qr.Awarded = int(float64(q.Marks) * e.policy.FillBlankPartialRatio)
			qr.Feedback = "Not an exact match, partial credit awarded."
		}

	case models.KindShortAnswer:
		submitted, err := stringValue(answer.Value)
		if err != nil {
			log.Printf("attempt answer for %s rejected: %v", q.ID, &apperr.ValidationError{QuestionID: q.ID, Reason: err.Error()})
			return qr
		}
		matched, total := containmentCounts(q.ReferenceAnswer, submitted)
		s := TokenContainment(q.ReferenceAnswer, submitted)
		qr.Awarded = int(float64(q.Marks) * s)
		qr.Feedback = fmt.Sprintf("Matched %d of %d key terms.", matched, total)

	case models.KindDescriptive:
		submitted, err := stringValue(answer.Value)
		if err != nil {
			log.Printf("attempt answer for %s rejected: %v", q.ID, &apperr.ValidationError{QuestionID: q.ID, Reason: err.Error()})
			return qr
		}
		s := e.descriptiveSimilarity(ctx, q.ReferenceAnswer, submitted)
		credit := e.policy.DescriptiveBaseCredit + e.policy.DescriptiveSimilarityWeight*s
		qr.Awarded = int(float64(q.Marks) * credit)
		qr.Feedback = descriptiveFeedback(s, MatchedKeywords(q.ReferenceAnswer, submitted))
	}

	if qr.Awarded > q.Marks {
		qr.Awarded = q.Marks
	}
	return qr
}

// descriptiveSimilarity prefers the external semantic capability and falls
// back to lexical token containment on any failure.
func (e *Evaluator) descriptiveSimilarity(ctx context.Context, reference, candidate string) float64 {
	if e.similarity != nil {
		s, err := e.similarity(ctx, reference, candidate)
		if err == nil {
			return clamp01(s)
		}
		log.Printf("semantic similarity unavailable, using lexical fallback: %v", err)
	}
	return clamp01(TokenContainment(reference, candidate))
}

func descriptiveFeedback(similarity float64, keywords []string) string {
	var msg string
	switch {
	case similarity >= 0.8:
		msg = "Excellent answer! Shows comprehensive understanding."
	case similarity >= 0.6:
		msg = "Good answer with most key concepts covered."
	case similarity >= 0.4:
		msg = "Fair answer but missing some important points."
	default:
		msg = "Answer needs significant improvement. Please review the topic."
	}
	if len(keywords) > 0 {
		msg += " Key terms covered: " + strings.Join(keywords, ", ") + "."
	}
	return msg
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// optionIndex coerces a submitted multiple-choice value to an integer index.
// JSON decoding delivers numbers as float64, so fractional values are
// rejected rather than truncated.
func optionIndex(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("option index %v is not an integer", n)
		}
		return int(n), nil
	case string:
		idx, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("option index %q is not an integer", n)
		}
		return idx, nil
	default:
		return 0, fmt.Errorf("unsupported option index type %T", v)
	}
}

func boolValue(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("value %q is not a boolean", b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("unsupported boolean type %T", v)
	}
}

func stringValue(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unsupported text type %T", v)
	}
	return s, nil
}
