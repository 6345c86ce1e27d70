package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"smart-quiz-service/internal/config"
	"smart-quiz-service/internal/db"
	"smart-quiz-service/internal/event"
	"smart-quiz-service/internal/grading"
	"smart-quiz-service/internal/handlers"
	"smart-quiz-service/internal/monitor"
	"smart-quiz-service/internal/repository"
	"smart-quiz-service/internal/semantic"
	"smart-quiz-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.MongoURI)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitURI != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.MongoDatabase)

	// Quizzes
	quizRepo := repository.NewQuizRepository(database)
	quizService := service.NewQuizService(quizRepo)
	quizHandler := handlers.NewQuizHandler(quizService)

	// Evaluator, with the NLP service as optional semantic capability
	var evalOpts []grading.Option
	if cfg.NLPServiceURL != "" {
		nlpClient := semantic.NewClient(cfg.NLPServiceURL, cfg.NLPTimeout)
		healthCtx, cancel := context.WithTimeout(context.Background(), cfg.NLPTimeout)
		if !nlpClient.Healthy(healthCtx) {
			log.Print("NLP service not healthy, descriptive answers fall back to lexical scoring until it recovers")
		}
		cancel()
		evalOpts = append(evalOpts, grading.WithSimilarity(nlpClient.Similarity))
	} else {
		log.Println("NLP service not configured, descriptive answers use lexical scoring")
	}
	evaluator := grading.NewEvaluator(evalOpts...)

	// Distraction monitoring
	eventRepo := repository.NewEventRepository(database)
	monitors := monitor.NewRegistry(monitor.DefaultConfig(), eventRepo)

	// Submission guard
	var guard service.SubmissionGuard
	if cfg.RedisURI != "" {
		opts, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		guard = service.NewRedisGuard(redis.NewClient(opts))
	} else {
		log.Println("Redis not configured, submission guard is in-memory only")
		guard = service.NewMemoryGuard()
	}

	// Attempts
	attemptRepo := repository.NewAttemptRepository(database)
	attemptService := service.NewAttemptService(quizRepo, attemptRepo, eventRepo, monitors, evaluator, guard, publisherOrNil(publisher))
	attemptHandler := handlers.NewAttemptHandler(attemptService)

	// Public routes
	publicQuiz := r.Group("/public/quizz/quiz")
	{
		publicQuiz.GET("/", quizHandler.ListQuizzes)
		publicQuiz.GET("/:id", quizHandler.GetQuiz)
	}

	publicAttempt := r.Group("/public/quizz/attempt")
	{
		publicAttempt.GET("/:id/result", attemptHandler.GetResult)
	}

	publicUser := r.Group("/public/quizz/user")
	{
		publicUser.GET("/:id/results", attemptHandler.GetResultsByUser)
	}

	// Protected routes
	requireUser := func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}

	protectedQuiz := r.Group("/protected/quizz/quiz", requireUser)
	{
		protectedQuiz.POST("/", quizHandler.CreateQuiz)
		protectedQuiz.PUT("/:id", quizHandler.UpdateQuiz)
		protectedQuiz.DELETE("/:id", quizHandler.DeleteQuiz)
	}

	protectedAttempt := r.Group("/protected/quizz/attempt", requireUser)
	{
		protectedAttempt.POST("/", attemptHandler.StartAttempt)
		protectedAttempt.POST("/:id/events", attemptHandler.IngestEvents)
		protectedAttempt.POST("/:id/submit", attemptHandler.SubmitAttempt)
		protectedAttempt.GET("/:id/focus", attemptHandler.GetFocusSummary)
		protectedAttempt.GET("/:id/events", attemptHandler.GetEvents)
	}

	r.Run(":" + cfg.Port)
}

// publisherOrNil keeps the service's Publisher interface nil when RabbitMQ is
// not configured; a typed nil pointer would defeat the nil check.
func publisherOrNil(p *event.EventPublisher) service.Publisher {
	if p == nil {
		return nil
	}
	return p
}
