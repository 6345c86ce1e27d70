package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/grading"
	"smart-quiz-service/internal/models"
	"smart-quiz-service/internal/monitor"
)

// QuizStore and AttemptStore are the persistence collaborators. The Mongo
// repositories implement them; tests substitute fakes.
type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
}

type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *models.Attempt) error
	FindAttempt(ctx context.Context, id string) (*models.Attempt, error)
	MarkSubmitted(ctx context.Context, id string, endTime time.Time) error
	RecordResult(ctx context.Context, result *models.AttemptResult) error
	FindResultByAttempt(ctx context.Context, attemptID string) (*models.AttemptResult, error)
	FindResultsByUser(ctx context.Context, userID string) ([]models.AttemptResult, error)
}

// EventStore reads back persisted distraction telemetry.
type EventStore interface {
	FindByAttempt(ctx context.Context, attemptID string) ([]models.DistractionEvent, error)
}

// Publisher broadcasts lifecycle events. Optional: a nil Publisher disables
// broadcasting, mirroring how the service runs without RabbitMQ configured.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// AttemptService ties the attempt lifecycle together: starting an attempt
// spins up its distraction monitor, submission stops the monitor, grades the
// answers and merges the focus score into the persisted result.
type AttemptService struct {
	Quizzes   QuizStore
	Attempts  AttemptStore
	Events    EventStore
	Monitors  *monitor.Registry
	Evaluator *grading.Evaluator
	Guard     SubmissionGuard
	Publisher Publisher
}

func NewAttemptService(quizzes QuizStore, attempts AttemptStore, events EventStore, monitors *monitor.Registry, evaluator *grading.Evaluator, guard SubmissionGuard, publisher Publisher) *AttemptService {
	return &AttemptService{
		Quizzes:   quizzes,
		Attempts:  attempts,
		Events:    events,
		Monitors:  monitors,
		Evaluator: evaluator,
		Guard:     guard,
		Publisher: publisher,
	}
}

// StartAttempt creates the attempt record and starts its monitoring session.
func (s *AttemptService) StartAttempt(ctx context.Context, quizID, userID string) (*models.Attempt, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	attempt := &models.Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		UserID:    userID,
		StartTime: time.Now(),
		Status:    models.AttemptStatusInProgress,
	}
	if err := s.Attempts.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	if _, err := s.Monitors.Start(attempt.ID); err != nil {
		return nil, err
	}

	s.publish("attempt.started", map[string]interface{}{
		"attempt_id": attempt.ID,
		"quiz_id":    quizID,
		"user_id":    userID,
	})
	return attempt, nil
}

// IngestSignals feeds a batch of client telemetry into the attempt's monitor.
func (s *AttemptService) IngestSignals(ctx context.Context, attemptID string, signals []monitor.Signal) error {
	session, err := s.Monitors.Get(attemptID)
	if err != nil {
		return err
	}
	for _, sig := range signals {
		if err := session.Offer(sig); err != nil {
			return err
		}
	}
	return nil
}

// FocusSummary returns the monitor's current rollup without stopping it.
func (s *AttemptService) FocusSummary(ctx context.Context, attemptID string) (monitor.Summary, error) {
	session, err := s.Monitors.Get(attemptID)
	if err != nil {
		return monitor.Summary{}, err
	}
	return session.Summary()
}

// Submit grades the answer set, persists the result and stops monitoring.
// A repeated submit for a completed attempt is rejected, never re-scored,
// but a submit that failed before the attempt was durably marked submitted
// releases its guard slot so the learner can retry.
func (s *AttemptService) Submit(ctx context.Context, attemptID string, answers []models.Answer, endTime time.Time) (*models.AttemptResult, error) {
	attempt, err := s.Attempts.FindAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == models.AttemptStatusSubmitted {
		return nil, apperr.ErrAlreadySubmitted
	}
	acquired, err := s.Guard.Acquire(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperr.ErrAlreadySubmitted
	}

	result, err := s.submit(ctx, attempt, attemptID, answers, endTime)
	if err != nil {
		if relErr := s.Guard.Release(ctx, attemptID); relErr != nil {
			log.Printf("attempt %s: failed to release submission guard: %v", attemptID, relErr)
		}
		return nil, err
	}

	s.publish("attempt.submitted", map[string]interface{}{
		"attempt_id":  attemptID,
		"quiz_id":     attempt.QuizID,
		"user_id":     attempt.UserID,
		"percentage":  result.Percentage,
		"focus_score": result.FocusScore,
	})
	return result, nil
}

// submit runs the guarded part of a submission. Any error unwinds to a guard
// release in Submit, so a transient store outage never strands the attempt
// between "no result persisted" and "re-submission rejected".
func (s *AttemptService) submit(ctx context.Context, attempt *models.Attempt, attemptID string, answers []models.Answer, endTime time.Time) (*models.AttemptResult, error) {
	// A prior submit may have recorded the result and then failed to mark the
	// attempt. Finish that submission instead of grading a second time.
	if existing, err := s.Attempts.FindResultByAttempt(ctx, attemptID); err == nil {
		if err := s.Attempts.MarkSubmitted(ctx, attemptID, existing.SubmittedAt); err != nil {
			return nil, err
		}
		s.stopMonitor(attemptID)
		return existing, nil
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	quiz, err := s.Quizzes.FindByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answerMap := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		if _, dup := answerMap[a.QuestionID]; dup {
			continue // first answer per question wins
		}
		answerMap[a.QuestionID] = a
	}

	result, err := s.Evaluator.Evaluate(ctx, quiz, answerMap, attemptID, endTime)
	if err != nil {
		return nil, err
	}
	result.ID = uuid.NewString()
	result.UserID = attempt.UserID
	result.FocusScore = s.focusScore(attemptID)

	if err := s.Attempts.RecordResult(ctx, result); err != nil {
		return nil, err
	}
	if err := s.Attempts.MarkSubmitted(ctx, attemptID, endTime); err != nil {
		return nil, err
	}

	// Only now is the monitor stopped and discarded: a failed persistence
	// keeps it alive so the retry still has its telemetry.
	s.stopMonitor(attemptID)
	return result, nil
}

// focusScore reads the live monitor's rollup without stopping it. No live
// monitor (e.g. service restart mid-attempt) leaves the result graded with
// no distraction deductions.
func (s *AttemptService) focusScore(attemptID string) int {
	session, err := s.Monitors.Get(attemptID)
	if err != nil {
		log.Printf("attempt %s: no monitoring session at submit: %v", attemptID, err)
		return 100
	}
	summary, err := session.Summary()
	if err != nil {
		log.Printf("attempt %s: monitoring session stopped at submit: %v", attemptID, err)
		return 100
	}
	return summary.FocusScore
}

func (s *AttemptService) stopMonitor(attemptID string) {
	if _, err := s.Monitors.Stop(attemptID); err != nil {
		log.Printf("attempt %s: no monitoring session to stop: %v", attemptID, err)
	}
}

// GetEvents returns the persisted distraction events for an attempt.
func (s *AttemptService) GetEvents(ctx context.Context, attemptID string) ([]models.DistractionEvent, error) {
	return s.Events.FindByAttempt(ctx, attemptID)
}

func (s *AttemptService) GetResult(ctx context.Context, attemptID string) (*models.AttemptResult, error) {
	return s.Attempts.FindResultByAttempt(ctx, attemptID)
}

func (s *AttemptService) GetResultsByUser(ctx context.Context, userID string) ([]models.AttemptResult, error) {
	return s.Attempts.FindResultsByUser(ctx, userID)
}

func (s *AttemptService) publish(eventType string, payload interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(eventType, payload); err != nil {
		log.Printf("failed to publish %s: %v", eventType, err)
	}
}
