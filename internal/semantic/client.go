// Package semantic is the HTTP client for the NLP evaluation service. The
// service compares two texts with a sentence-embedding model and returns a
// similarity in [0,1]; callers treat it as an optional capability and fall
// back to lexical scoring when it is unreachable.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type evaluationRequest struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	UserAnswer    string `json:"userAnswer"`
	MaxMarks      int    `json:"maxMarks"`
}

type evaluationResponse struct {
	Score              float64 `json:"score"`
	Confidence         float64 `json:"confidence"`
	Feedback           string  `json:"feedback"`
	SemanticSimilarity float64 `json:"semanticSimilarity"`
}

// Similarity scores the candidate against the reference. The signature
// matches grading.SimilarityFunc.
func (c *Client) Similarity(ctx context.Context, reference, candidate string) (float64, error) {
	body, err := json.Marshal(evaluationRequest{
		CorrectAnswer: reference,
		UserAnswer:    candidate,
		MaxMarks:      1,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("nlp service returned status %d", resp.StatusCode)
	}

	var out evaluationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.SemanticSimilarity, nil
}

// Healthy probes the NLP service health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
