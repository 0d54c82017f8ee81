package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatClientSuccess(t *testing.T) {
	var body map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL+"/", "k1", "test-model", 0.1, 64, srv.Client())
	text, err := c.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "hello" {
		t.Errorf("Complete() = %q, want hello", text)
	}
	if auth != "Bearer k1" {
		t.Errorf("Authorization = %q", auth)
	}
	if body["model"] != "test-model" {
		t.Errorf("model = %v", body["model"])
	}
	if !strings.Contains(fmt.Sprint(body["messages"]), "say hello") {
		t.Errorf("messages = %v", body["messages"])
	}
}

func stubChat(text string, err error) *ChatClient {
	return &ChatClient{complete: func(context.Context, string, string) (string, error) { return text, err }}
}

func TestChatClientEmptyContent(t *testing.T) {
	_, err := stubChat("   ", nil).Complete(context.Background(), "x")
	var ce *CompletionError
	if !errors.As(err, &ce) || ce.Kind != KindResponse {
		t.Errorf("error = %v, want response CompletionError", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   ErrorKind
		status int
	}{
		{"429 status", errors.New("llm: status 429: rate limited"), KindQuotaExhausted, 429},
		{"resource exhausted body", errors.New(`llm: status 400: [{"error":{"status":"RESOURCE_EXHAUSTED"}}]`), KindQuotaExhausted, 400},
		{"quota text", errors.New("llm: You exceeded your current quota"), KindQuotaExhausted, 0},
		{"server error", errors.New("llm: status 503: unavailable"), KindTransport, 503},
		{"bad request", errors.New("llm: status 400: invalid model"), KindRequest, 400},
		{"decode failure", errors.New("llm: decode response: unexpected EOF"), KindResponse, 0},
		{"network", fmt.Errorf("llm: do request: %w", timeoutErr{}), KindTransport, 0},
		{"canceled", fmt.Errorf("llm: %w", context.Canceled), KindTransport, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stubChat("", tt.err).Complete(context.Background(), "x")
			var ce *CompletionError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *CompletionError", err)
			}
			if ce.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", ce.Kind, tt.want)
			}
			if ce.Status != tt.status {
				t.Errorf("Status = %d, want %d", ce.Status, tt.status)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error does not wrap the client error")
			}
			if IsQuotaExhausted(err) != (tt.want == KindQuotaExhausted) {
				t.Errorf("IsQuotaExhausted() = %v", IsQuotaExhausted(err))
			}
		})
	}
}

func TestClassifyErrorKeepsCompletionError(t *testing.T) {
	orig := &CompletionError{Kind: KindQuotaExhausted, Err: errors.New("x")}
	if got := classifyError(orig); got != error(orig) {
		t.Errorf("classifyError() = %v, want original", got)
	}
}

func TestChatClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewChatClient(srv.URL, "k", "m", 0, 0, nil)
	_, err := c.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsQuotaExhausted(err) {
		t.Errorf("connection refused classified as quota: %v", err)
	}
}

func TestNewChatFactory(t *testing.T) {
	f := NewChatFactory("http://llm.local", "m", 10, nil)
	c, ok := f("k2", 0.7).(*ChatClient)
	if !ok {
		t.Fatal("factory did not return *ChatClient")
	}
	if c.key != "k2" || c.temperature != 0.7 || c.maxTokens != 10 || c.model != "m" {
		t.Errorf("client = %+v", c)
	}
}

func TestErrorKindString(t *testing.T) {
	if KindQuotaExhausted.String() != "quota_exhausted" {
		t.Errorf("String() = %q", KindQuotaExhausted.String())
	}
	if ErrorKind(99).String() != "unknown" {
		t.Errorf("String() = %q", ErrorKind(99).String())
	}
}
