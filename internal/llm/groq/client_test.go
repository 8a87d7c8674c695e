package groq

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

	"resume-parser/internal/llm"
)

type capturedRequest struct {
	Model          string  `json:"model"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float32 `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
	return string(body)
}

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.APIKey = "test-key"
	opts.BaseURL = srv.URL + "/openai/v1"
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestStructureSendsRequestAndParses(t *testing.T) {
	var got capturedRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("```json\n" +
			`{"skills":["Python","React"],"experience":[{"company":"Acme","role":"Dev","duration":"2y","description":"APIs"}],"education":[],"projects":[]}` +
			"\n```")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Options{})
	d, err := client.Structure(context.Background(), "Jane Doe\nPython, React")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}

	if path != "/openai/v1/chat/completions" {
		t.Fatalf("unexpected path %s", path)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != DefaultModel || got.MaxTokens != DefaultMaxTokens || got.Temperature != DefaultTemperature {
		t.Fatalf("unexpected request params %+v", got)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", got.ResponseFormat.Type)
	}
	if len(got.Messages) != 2 || !strings.HasSuffix(got.Messages[1].Content, "Python, React") {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if len(d.Skills) != 2 || d.Skills[0] != "Python" || d.Skills[1] != "React" || len(d.Experience) != 1 {
		t.Fatalf("unexpected details %+v", d)
	}
}

func TestStructureTruncatesLongInput(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(completionBody(`{"skills":[],"experience":[],"education":[],"projects":[]}`)))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, Options{MaxInputChars: 10})
	if _, err := client.Structure(context.Background(), "0123456789ABCDEF"); err != nil {
		t.Fatalf("Structure: %v", err)
	}
	user := got.Messages[1].Content
	if !strings.HasSuffix(user, "0123456789") || strings.Contains(user, "ABCDEF") {
		t.Fatalf("expected truncated resume text, got %q", user[len(user)-20:])
	}
}

func TestStructureServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"over capacity","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, Options{}).Structure(context.Background(), "text")
	var structErr *llm.StructuringError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected StructuringError, got %v", err)
	}
	if structErr.Kind != llm.KindTransport || structErr.StatusCode != http.StatusServiceUnavailable || !structErr.Transient() {
		t.Fatalf("unexpected error %+v", structErr)
	}
	if strings.Contains(err.Error(), "test-key") {
		t.Fatalf("error leaks api key")
	}
}

func TestStructureInvalidJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody("Sorry, I cannot help with that.")))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, Options{}).Structure(context.Background(), "text")
	var structErr *llm.StructuringError
	if !errors.As(err, &structErr) || structErr.Kind != llm.KindParse {
		t.Fatalf("expected parse StructuringError, got %v", err)
	}
}

func TestStructureTimeoutIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, Options{Timeout: 30 * time.Millisecond}).Structure(context.Background(), "text")
	var structErr *llm.StructuringError
	if !errors.As(err, &structErr) || structErr.Kind != llm.KindTransport || !structErr.Transient() {
		t.Fatalf("expected transient transport error, got %v", err)
	}
}

func TestRetryWrapsClientOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(completionBody(`{"skills":["Go"],"experience":[],"education":[],"projects":[]}`)))
	}))
	defer srv.Close()

	s := llm.WithRetry(newTestClient(t, srv, Options{}), time.Millisecond)
	d, err := s.Structure(context.Background(), "text")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 || len(d.Skills) != 1 {
		t.Fatalf("expected one retry and parsed result, calls=%d details=%+v", calls, d)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
