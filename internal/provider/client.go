// Package provider implements the client for the external generative
// image API. One call produces one image; retries are the caller's
// decision, not the client's.
package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

var tracer = otel.Tracer("provider-client")

const (
	defaultTimeout = 60 * time.Second

	// Conservative default: most hosted image models allow single-digit
	// requests per minute on standard tiers.
	defaultRPM   = 6
	defaultBurst = 2

	// maxResponseSize caps the response body read. Generated images are
	// a few MB of base64; anything larger is not a thumbnail.
	maxResponseSize = 32 * 1024 * 1024
)

// Config holds provider client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// GenerateRequest describes a single image generation call.
type GenerateRequest struct {
	Prompt      string
	AspectRatio domain.AspectRatio
}

// Image is the decoded payload returned by the provider.
type Image struct {
	Data     []byte
	MimeType string
}

// Client is a rate-limited generative image API client.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a provider client. The base URL is configurable so tests
// can point the client at an httptest server.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		logger:  logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateImage sends one prompt to the provider and returns the first
// inline image payload from the response. No retry: a failed call
// surfaces immediately so the caller can mark the record failed.
func (c *Client) GenerateImage(ctx context.Context, req GenerateRequest) (*Image, error) {
	ctx, span := tracer.Start(ctx, "provider.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider.model", c.model),
		attribute.String("provider.aspect_ratio", string(req.AspectRatio)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, wrapError("generate", c.model, fmt.Errorf("rate limit wait: %w", err))
	}

	body := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: string(req.AspectRatio)},
		},
		SafetySettings: moderateSafetySettings(),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, wrapError("generate", c.model, fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, wrapError("generate", c.model, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	if c.logger != nil {
		c.logger.Debug("provider request",
			"model", c.model,
			"aspect_ratio", req.AspectRatio,
			"prompt_len", len(req.Prompt),
		)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, wrapError("generate", c.model, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		span.RecordError(err)
		return nil, wrapError("generate", c.model, fmt.Errorf("read response: %w", err))
	}

	if err := statusError(resp.StatusCode, raw); err != nil {
		span.RecordError(err)
		return nil, wrapError("generate", c.model, err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, wrapError("generate", c.model, fmt.Errorf("parse response: %w", err))
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return nil, wrapError("generate", c.model,
			fmt.Errorf("%w: %s", ErrBlocked, parsed.PromptFeedback.BlockReason))
	}

	img, err := firstInlineImage(parsed)
	if err != nil {
		return nil, wrapError("generate", c.model, err)
	}

	span.SetAttributes(attribute.Int("provider.image_bytes", len(img.Data)))
	return img, nil
}

// statusError maps an HTTP status to a sentinel. The body is included
// for unexpected statuses because the provider's error messages are the
// only diagnostic available.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, errorMessage(body))
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status %d: %s", status, errorMessage(body))
	}
}

// errorMessage pulls the provider's message out of an error body,
// falling back to the raw bytes.
func errorMessage(body []byte) string {
	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	const maxLen = 512
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return string(body)
}

// firstInlineImage walks the first candidate's parts and decodes the
// first inline payload found.
func firstInlineImage(resp generateContentResponse) (*Image, error) {
	if len(resp.Candidates) == 0 {
		return nil, ErrNoImage
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
		return &Image{
			Data:     data,
			MimeType: p.InlineData.MimeType,
		}, nil
	}

	return nil, ErrNoImage
}
