package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/models"
	"smart-quiz-service/internal/monitor"
	"smart-quiz-service/internal/service"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

type startAttemptRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := c.GetHeader("X-User-ID")

	attempt, err := h.Service.StartAttempt(context.Background(), req.QuizID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

type ingestEventsRequest struct {
	Events []monitor.Signal `json:"events" binding:"required"`
}

func (h *AttemptHandler) IngestEvents(c *gin.Context) {
	var req ingestEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.IngestSignals(context.Background(), c.Param("id"), req.Events); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": len(req.Events)})
}

type submitAttemptRequest struct {
	Answers []models.Answer `json:"answers"`
	EndTime time.Time       `json:"end_time"`
}

func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EndTime.IsZero() {
		req.EndTime = time.Now()
	}

	result, err := h.Service.Submit(context.Background(), c.Param("id"), req.Answers, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) GetFocusSummary(c *gin.Context) {
	summary, err := h.Service.FocusSummary(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AttemptHandler) GetEvents(c *gin.Context) {
	events, err := h.Service.GetEvents(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *AttemptHandler) GetResult(c *gin.Context) {
	result, err := h.Service.GetResult(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) GetResultsByUser(c *gin.Context) {
	results, err := h.Service.GetResultsByUser(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func respondError(c *gin.Context, err error) {
	var cfgErr *apperr.ConfigurationError
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": "Attempt already submitted"})
	case errors.Is(err, monitor.ErrSessionStopped):
		c.JSON(http.StatusConflict, gin.H{"error": "Monitoring already stopped for this attempt"})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
