package engine

import (
	"context"
	"errors"
	"log/slog"
)

// ErrCredentialsExhausted is returned when every credential hit its quota for one request.
var ErrCredentialsExhausted = errors.New("all credentials exhausted")

// Failover sends prompts through a Completer bound to the rotator's current key.
// On quota exhaustion it advances the rotator, rebuilds the Completer and retries the
// same prompt, at most Len() attempts per prompt. Any other failure is returned as is.
type Failover struct {
	rot          *Rotator
	newCompleter CompleterFactory
	temperature  float64
	handle       Completer
}

// NewFailover binds a Completer to rot.Current().
func NewFailover(rot *Rotator, newCompleter CompleterFactory, temperature float64) *Failover {
	return &Failover{
		rot:          rot,
		newCompleter: newCompleter,
		temperature:  temperature,
		handle:       newCompleter(rot.Current(), temperature),
	}
}

// Complete runs prompt with quota failover. The rebuilt handle is kept for later prompts.
func (f *Failover) Complete(ctx context.Context, prompt string) (string, error) {
	for attempt := 1; attempt <= f.rot.Len(); attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := f.handle.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !IsQuotaExhausted(err) {
			return "", err
		}
		metrics.QuotaRotations.Add(1)
		slog.Warn("llm: quota exhausted, rotating key",
			slog.Int("index", f.rot.Index()),
			slog.Int("attempt", attempt),
			slog.Int("keys", f.rot.Len()),
		)
		f.handle = f.newCompleter(f.rot.Advance(), f.temperature)
	}
	return "", ErrCredentialsExhausted
}
