package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"smart-quiz-service/internal/models"
	"smart-quiz-service/internal/repository"
)

type QuizService struct {
	Repo *repository.QuizRepository
}

func NewQuizService(repo *repository.QuizRepository) *QuizService {
	return &QuizService{Repo: repo}
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	return s.Repo.FindAll(ctx)
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	return s.Repo.FindByID(ctx, id)
}

// CreateQuiz validates the definition before anything may reference it.
// Malformed quizzes are a configuration error, rejected here rather than at
// scoring time.
func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	quiz.Status = "active"
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = quiz.CreatedAt
	return s.Repo.Create(ctx, quiz)
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id string, update map[string]interface{}) error {
	update["updated_at"] = time.Now()
	return s.Repo.Update(ctx, id, bson.M(update))
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
