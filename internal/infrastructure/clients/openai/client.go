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

	"github.com/zatekoja/Careprovidermatching/internal/domain/entities"
	"github.com/zatekoja/Careprovidermatching/internal/domain/providers"
	"github.com/zatekoja/Careprovidermatching/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the match enhancement provider on the OpenAI Responses
// API. Errors and unusable responses are reported as wrapped
// providers.ErrEnhancementUnavailable so the orchestrator's fallback can
// treat them uniformly.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI enhancement client
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
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

// EnhanceMatch sends one candidate's bundle to the model and parses the
// structured response into supplementary factors plus a confidence score.
func (c *Client) EnhanceMatch(ctx context.Context, req *providers.EnhancementRequest) (*entities.MatchEnhancement, error) {
	if req == nil || req.Provider == nil || req.Criteria == nil {
		return nil, fmt.Errorf("%w: request is incomplete", providers.ErrEnhancementUnavailable)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			recordEnhancementMetric(ctx, c.model, 0, 0, err)
			return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
		}
	}

	userPrompt, err := buildMatchUserPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": matchEnhancementSystemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":       0.2,
		"max_output_tokens": 600,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordEnhancementMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordEnhancementMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		return nil, fmt.Errorf("%w: openai request failed with status %d", providers.ErrEnhancementUnavailable, resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordEnhancementMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		err := errors.New("missing output text")
		recordEnhancementMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: openai response missing output text", providers.ErrEnhancementUnavailable)
	}

	parsed, err := parseEnhancementPayload([]byte(stripMarkdownFences(text)))
	if err != nil {
		recordEnhancementMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", providers.ErrEnhancementUnavailable, err)
	}

	recordEnhancementMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	parsed.Provider = "openai"
	parsed.Model = c.model
	return parsed, nil
}

// stripMarkdownFences removes a surrounding ```json / ``` block if present
func stripMarkdownFences(text string) string {
	cleaned := text
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type enhancementMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var (
	enhancementMetricsInit = false
	metricsState           enhancementMetrics
)

func ensureEnhancementMetrics() {
	if enhancementMetricsInit {
		return
	}
	meter := otel.Meter("github.com/zatekoja/Careprovidermatching/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}

	metricsState = enhancementMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	enhancementMetricsInit = true
}

func recordEnhancementMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureEnhancementMetrics()
	if !enhancementMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metricsState.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metricsState.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metricsState.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
