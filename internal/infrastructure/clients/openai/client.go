package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

const narrativeSystemPrompt = "You are a patient financial counselor. Explain a medical cost " +
	"estimate in plain language: what drives the number, what the range means, and what the " +
	"patient can do next. Never invent prices or programs beyond what the estimate contains. " +
	"Keep it under 150 words."

// Client generates estimate narratives through the OpenAI responses
// API. Calls are wrapped in a circuit breaker and a hard timeout; the
// caller substitutes a fixed fallback on any error, so a slow or down
// upstream never blocks the estimate itself.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new OpenAI narrative client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-narrative",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}, nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// ExplainEstimate returns a short prose explanation of the estimate.
func (c *Client) ExplainEstimate(ctx context.Context, result *entities.EstimateResult, question string) (string, error) {
	if result == nil {
		return "", errors.New("estimate result is required")
	}

	text, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, result, question)
	})
	if err != nil {
		return "", err
	}
	return text.(string), nil
}

func (c *Client) generate(ctx context.Context, result *entities.EstimateResult, question string) (string, error) {
	userPrompt := buildUserPrompt(result, question)

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": narrativeSystemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":       0.3,
		"max_output_tokens": 400,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}

	for _, output := range envelope.Output {
		for _, content := range output.Content {
			if content.Type == "output_text" && strings.TrimSpace(content.Text) != "" {
				return strings.TrimSpace(content.Text), nil
			}
		}
	}
	return "", errors.New("openai response contained no text output")
}

func buildUserPrompt(result *entities.EstimateResult, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Procedure %s at facility %s.\n", result.ProcedureCode, result.FacilityID)
	fmt.Fprintf(&b, "Estimated patient cost: $%.2f (range $%.2f to $%.2f, confidence %.0f%%).\n",
		result.Range.Mid, result.Range.Low, result.Range.High, result.Confidence*100)
	if len(result.Assumptions) > 0 {
		b.WriteString("Assumptions: " + strings.Join(result.Assumptions, "; ") + ".\n")
	}
	if question != "" {
		b.WriteString("The patient asks: " + question)
	}
	return b.String()
}
