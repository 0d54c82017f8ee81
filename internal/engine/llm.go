package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// ErrorKind classifies a failed completion. The set is closed.
type ErrorKind int

const (
	KindTransport      ErrorKind = iota // network failure, timeout
	KindQuotaExhausted                  // credential usage limit reached
	KindRequest                         // provider rejected the request
	KindResponse                        // provider answered with nothing usable
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	}
	return "unknown"
}

// CompletionError is the only error type returned by ChatClient.
// Status is the HTTP status when one could be determined.
type CompletionError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm %s (HTTP %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// IsQuotaExhausted reports whether err is a quota-exhausted completion failure.
func IsQuotaExhausted(err error) bool {
	var ce *CompletionError
	return errors.As(err, &ce) && ce.Kind == KindQuotaExhausted
}

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFactory builds a Completer bound to one credential.
type CompleterFactory func(credential string, temperature float64) Completer

// ChatClient adapts a single-key go-kit/llm client to Completer.
// It never carries fallback keys: the caller owns key rotation.
type ChatClient struct {
	key         string
	model       string
	temperature float64
	maxTokens   int
	complete    func(ctx context.Context, system, user string) (string, error)
}

// NewChatClient creates a client for base (e.g. https://generativelanguage.googleapis.com/v1beta/openai).
func NewChatClient(base, key, model string, temperature float64, maxTokens int, hc *http.Client) *ChatClient {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	client := llm.NewClient(strings.TrimRight(base, "/"), key, model,
		llm.WithMaxTokens(maxTokens),
		llm.WithTemperature(temperature),
		llm.WithHTTPClient(hc),
	)
	return &ChatClient{
		key:         key,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		complete: func(ctx context.Context, system, user string) (string, error) {
			return client.Complete(ctx, system, user)
		},
	}
}

// NewChatFactory returns a CompleterFactory producing ChatClients that share hc.
func NewChatFactory(base, model string, maxTokens int, hc *http.Client) CompleterFactory {
	return func(credential string, temperature float64) Completer {
		return NewChatClient(base, credential, model, temperature, maxTokens, hc)
	}
}

// Complete sends prompt as a single user message.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	text, err := c.complete(ctx, "", prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", classifyError(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.LLMErrors.Add(1)
		return "", &CompletionError{Kind: KindResponse, Err: errors.New("empty content")}
	}
	return text, nil
}

var statusRe = regexp.MustCompile(`\b([45]\d\d)\b`)

// classifyError maps a go-kit/llm error onto the closed ErrorKind set.
// The client reports HTTP failures as text carrying the status code and the
// provider's error body, so the status and Google's RESOURCE_EXHAUSTED marker
// are read from the message.
func classifyError(err error) error {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CompletionError{Kind: KindTransport, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return &CompletionError{Kind: KindTransport, Err: err}
	}

	msg := err.Error()
	status := 0
	if m := statusRe.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
	}
	upper := strings.ToUpper(msg)

	kind := KindRequest
	switch {
	case status == http.StatusTooManyRequests,
		strings.Contains(upper, "RESOURCE_EXHAUSTED"),
		strings.Contains(upper, "QUOTA"),
		strings.Contains(upper, "RATE LIMIT"):
		kind = KindQuotaExhausted
	case status >= 500:
		kind = KindTransport
	case status == 0 && (strings.Contains(upper, "DECODE") || strings.Contains(upper, "UNMARSHAL") ||
		strings.Contains(upper, "NO CHOICES")):
		kind = KindResponse
	case status == 0:
		kind = KindTransport
	}
	return &CompletionError{Kind: kind, Status: status, Err: err}
}
