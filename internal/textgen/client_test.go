package textgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reqforge/internal/config"
	"reqforge/internal/services"
	"reqforge/internal/textgen"
)

func testConfig(baseURL string) config.Generation {
	return config.Generation{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Model:           "test-model",
		TimeoutSeconds:  5,
		MaxInputChars:   2048,
		MaxOutputTokens: 256,
		Temperature:     0.7,
	}
}

func completionBody(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"choices":[{"message":{"content":` + string(quoted) + `}}]}`
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth, gotModel string
	var gotTemperature float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var payload struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = payload.Model
		gotTemperature = payload.Temperature
		if payload.MaxTokens != 256 {
			t.Errorf("max_tokens = %d, want 256", payload.MaxTokens)
		}
		w.Write([]byte(completionBody("  Purpose: manage orders.  ")))
	}))
	defer server.Close()

	client := textgen.NewClient(testConfig(server.URL))
	out, err := client.Generate(context.Background(), "Extract the fields.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Purpose: manage orders." {
		t.Fatalf("unexpected output %q", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotModel != "test-model" || gotTemperature != 0.7 {
		t.Fatalf("payload not forwarded: model=%q temperature=%v", gotModel, gotTemperature)
	}
}

func TestGenerateTruncatesPrompt(t *testing.T) {
	var gotLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		gotLen = len(payload.Messages[0].Content)
		w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxInputChars = 100
	client := textgen.NewClient(cfg)
	if _, err := client.Generate(context.Background(), strings.Repeat("a", 500)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotLen != 100 {
		t.Fatalf("expected truncated prompt of 100 chars, got %d", gotLen)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.APIKey = ""
	client := textgen.NewClient(cfg)
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateEmptyPromptRejected(t *testing.T) {
	client := textgen.NewClient(testConfig("http://127.0.0.1:0"))
	_, err := client.Generate(context.Background(), "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	}))
	defer server.Close()

	client := textgen.NewClient(testConfig(server.URL),
		textgen.WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		textgen.WithSleeper(func(time.Duration) {}),
	)
	out, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("unexpected output %q", out)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := textgen.NewClient(testConfig(server.URL), textgen.WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single call, got %d", calls.Load())
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := textgen.NewClient(testConfig(server.URL),
		textgen.WithRetryMaxAttempts(2),
		textgen.WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !services.IsRetryable(err) {
		t.Fatalf("exhausted-retry failure should stay retryable: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestGeneratorFunc(t *testing.T) {
	gen := textgen.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})
	out, err := gen.Generate(context.Background(), "hi")
	if err != nil || out != "echo: hi" {
		t.Fatalf("GeneratorFunc = %q, %v", out, err)
	}
}
