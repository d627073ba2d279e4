package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-prep-service/internal/httpx"
	"interview-prep-service/internal/logger"
)

// Turn is one prior exchange entry sent back to the model as conversation
// context. The full history lives on this side of the wire; the collaborator
// is stateless between calls.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Client is the low-level generative-model client. All methods block until
// the round-trip resolves or ctx is done.
type Client interface {
	// GenerateJSON requests output constrained to the given JSON schema and
	// returns the raw JSON text of the model reply.
	GenerateJSON(ctx context.Context, system, user string, schema map[string]any) (string, error)
	// GenerateText requests free-form text.
	GenerateText(ctx context.Context, system, user string) (string, error)
	// GenerateTurn requests the next reply given the accumulated history.
	GenerateTurn(ctx context.Context, system string, history []Turn) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

// Options configure NewClient; zero values fall back to sane defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func NewClient(log *logger.Logger, opts Options) Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-3-pro-preview"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	// A missing key is not validated here; requests simply fail.
	return &client{
		log:        log.With("component", "genai"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: opts.MaxRetries,
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	Contents          []generateContent `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Role  string         `json:"role"`
			Parts []generatePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (c *client) doOnce(ctx context.Context, body generateRequest) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, &TransportError{Status: resp.StatusCode, Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("genai http %d: %s", resp.StatusCode, truncate(string(raw), 512))}
	}
	return resp, raw, nil
}

func (c *client) generate(ctx context.Context, body generateRequest) (string, error) {
	backoff := time.Second

	var raw []byte
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &TransportError{Err: err}
		}
		resp, b, err := c.doOnce(ctx, body)
		if err == nil {
			raw = b
			break
		}
		if attempt == c.maxRetries || !httpx.IsRetryableError(err) {
			return "", err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("generate retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return "", &TransportError{Err: ctx.Err()}
		}
		backoff *= 2
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ParseError{Raw: string(raw), Err: err}
	}
	text := extractText(parsed)
	if strings.TrimSpace(text) == "" {
		return "", &ParseError{Raw: string(raw), Err: fmt.Errorf("no text in candidates")}
	}
	return text, nil
}

func extractText(resp generateResponse) string {
	var out strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			out.WriteString(part.Text)
		}
		// First candidate only; the API returns one unless asked otherwise.
		break
	}
	return out.String()
}

func (c *client) GenerateJSON(ctx context.Context, system, user string, schema map[string]any) (string, error) {
	req := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: []generatePart{{Text: user}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
			Temperature:      0.2,
		},
	}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &generateContent{Parts: []generatePart{{Text: system}}}
	}
	return c.generate(ctx, req)
}

func (c *client) GenerateText(ctx context.Context, system, user string) (string, error) {
	req := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: []generatePart{{Text: user}}}},
	}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &generateContent{Parts: []generatePart{{Text: system}}}
	}
	return c.generate(ctx, req)
}

func (c *client) GenerateTurn(ctx context.Context, system string, history []Turn) (string, error) {
	contents := make([]generateContent, 0, len(history))
	for _, turn := range history {
		role := turn.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, generateContent{Role: role, Parts: []generatePart{{Text: turn.Text}}})
	}
	req := generateRequest{Contents: contents}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &generateContent{Parts: []generatePart{{Text: system}}}
	}
	return c.generate(ctx, req)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
