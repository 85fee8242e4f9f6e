package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipsight/internal/analysis"
	"clipsight/internal/config"
	"clipsight/internal/extract"
)

func testConfig(baseURL string) config.LLM {
	return config.LLM{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "test/model",
		TimeoutSeconds: 5,
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func testContext() *extract.Context {
	return &extract.Context{
		VideoID:         "vid-1",
		DurationSeconds: 15,
		EntryCounts:     map[string]int{"objectTimeline": 3},
	}
}

func TestAnalyzeContext(t *testing.T) {
	var gotAuth, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat["type"] != "json_object" {
			t.Errorf("response_format = %v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}
		chatReply(t, w, `{"findings": ["strong opening"], "score": 0.8, "summary": "good hook"}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Title = "clipsight"
	client := NewClient(cfg)

	insight, err := client.AnalyzeContext(context.Background(), extract.PurposeHookAnalysis, testContext())
	if err != nil {
		t.Fatalf("AnalyzeContext failed: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotTitle != "clipsight" {
		t.Errorf("X-Title = %q", gotTitle)
	}
	if insight.Purpose != "hook_analysis" || insight.Model != "test/model" {
		t.Errorf("insight = %+v", insight)
	}
	var payload map[string]any
	if err := json.Unmarshal(insight.Payload, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload["summary"] != "good hook" {
		t.Errorf("payload = %v", payload)
	}
}

func TestAnalyzeContextRequiresAPIKey(t *testing.T) {
	client := NewClient(config.LLM{BaseURL: "http://localhost:1", Model: "m"})
	_, err := client.AnalyzeContext(context.Background(), extract.PurposeSummary, testContext())
	if !errors.Is(err, analysis.ErrConfiguration) {
		t.Fatalf("missing key should wrap ErrConfiguration, got %v", err)
	}
	for _, name := range []string{"llm.api_key", "CLIPSIGHT_LLM_API_KEY", "OPENROUTER_API_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestAnalyzeContextNilContext(t *testing.T) {
	client := NewClient(testConfig("http://localhost:1"))
	if _, err := client.AnalyzeContext(context.Background(), extract.PurposeSummary, nil); err == nil {
		t.Fatal("nil context should error")
	}
}

func TestRetryOn429HonorsRetryAfter(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "2")
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		chatReply(t, w, `{"ok": true}`)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(testConfig(server.URL),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	insight, err := client.AnalyzeContext(context.Background(), extract.PurposeSummary, testContext())
	if err != nil {
		t.Fatalf("AnalyzeContext failed after retries: %v", err)
	}
	if insight == nil {
		t.Fatal("insight should be returned on eventual success")
	}
	if attempts != 3 {
		t.Fatalf("server saw %d attempts, want 3", attempts)
	}
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2: %v", len(slept), slept)
	}
	for _, d := range slept {
		if d != 2*time.Second {
			t.Errorf("sleep %v, want the Retry-After value of 2s", d)
		}
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	if _, err := client.AnalyzeContext(context.Background(), extract.PurposeSummary, testContext()); err == nil {
		t.Fatal("400 should surface as an error")
	}
	if attempts != 1 {
		t.Fatalf("server saw %d attempts, want 1 (no retry on 4xx)", attempts)
	}
}

func TestRetriesExhausted(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL),
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}))
	if _, err := client.AnalyzeContext(context.Background(), extract.PurposeSummary, testContext()); err == nil {
		t.Fatal("persistent 500s should error")
	}
	if attempts != 3 {
		t.Fatalf("server saw %d attempts, want 3", attempts)
	}
}

func TestAnalyzeContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := client.AnalyzeContext(ctx, extract.PurposeSummary, testContext())
	if err == nil {
		t.Fatal("expired deadline should error")
	}
	if !errors.Is(err, analysis.ErrTimeout) {
		t.Fatalf("deadline failure should wrap ErrTimeout, got %v", err)
	}
}

func TestBackoffDelayDoubles(t *testing.T) {
	client := NewClient(config.LLM{}, WithRetryBackoff(time.Second, 10*time.Second))
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 8 * time.Second},
		{attempt: 5, want: 10 * time.Second},
		{attempt: 9, want: 10 * time.Second},
	}
	for _, tt := range tests {
		if got := client.backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("7"); !ok || d != 7*time.Second {
		t.Errorf("parseRetryAfter(7) = %v, %v", d, ok)
	}
	if _, ok := parseRetryAfter("-3"); ok {
		t.Error("negative seconds should not parse")
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Error("empty value should not parse")
	}
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Errorf("http date should parse to a positive delay: %v, %v", d, ok)
	}
}

func TestDecodeInsightJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "plain object", content: `{"a": 1}`},
		{name: "fenced", content: "```json\n{\"a\": 1}\n```"},
		{name: "fence without language", content: "```\n{\"a\": 1}\n```"},
		{name: "prose wrapped", content: `Here is the analysis: {"a": 1} hope that helps`},
		{name: "empty", content: "", wantErr: true},
		{name: "not json", content: "no braces here", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out map[string]any
			err := DecodeInsightJSON(tt.content, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInsightJSON failed: %v", err)
			}
			if out["a"] != float64(1) {
				t.Fatalf("decoded %v", out)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"ok": true}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}
