package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"interview-prep-service/internal/logger"
)

func candidateBody(text string) string {
	body := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestGenerateJSONSendsSchemaAndKey(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(candidateBody(`[{"question":"q","answer":"a"}]`)))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	out, err := c.GenerateJSON(context.Background(), "", "give me pairs", qaListSchema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `[{"question":"q","answer":"a"}]` {
		t.Fatalf("unexpected output %q", out)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key header %q", gotKey)
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected JSON response config, got %+v", gotReq.GenerationConfig)
	}
	if gotReq.GenerationConfig.ResponseSchema == nil {
		t.Fatalf("schema not forwarded")
	}
}

func TestGenerateTurnSendsFullHistory(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(candidateBody("Why Go?")))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "k"})
	history := []Turn{
		{Role: "user", Text: "hello"},
		{Role: "model", Text: "hi"},
		{Role: "user", Text: "ask me something"},
	}
	reply, err := c.GenerateTurn(context.Background(), "be a strict interviewer", history)
	if err != nil {
		t.Fatalf("generate turn: %v", err)
	}
	if reply != "Why Go?" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "be a strict interviewer" {
		t.Fatalf("system instruction not forwarded: %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 3 {
		t.Fatalf("expected full history, got %d contents", len(gotReq.Contents))
	}
	if gotReq.Contents[1].Role != "model" || gotReq.Contents[2].Role != "user" {
		t.Fatalf("roles mangled: %+v", gotReq.Contents)
	}
}

func TestTransportErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.GenerateText(context.Background(), "", "hello")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.HTTPStatusCode() != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", te.HTTPStatusCode())
	}
}

func TestRetriesRetryableStatuses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(candidateBody("recovered")))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2})
	out, err := c.GenerateText(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("unexpected output %q", out)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestMalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.GenerateText(context.Background(), "", "hello")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestEmptyCandidatesIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), Options{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.GenerateText(context.Background(), "", "hello")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for empty candidates, got %v", err)
	}
}
