package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// errNoText marks a strategy that ran cleanly but produced nothing usable.
var errNoText = errors.New("no text produced")

// Strategy is one named way of turning document bytes into text.
type Strategy struct {
	Name   string
	Decode func(ctx context.Context, content []byte) (string, error)
}

// DecodeAttempt records one strategy invocation. It lives only for the duration of a call.
type DecodeAttempt struct {
	Strategy string
	Err      error
	Chars    int
	Duration time.Duration
}

// OK reports whether the attempt yielded usable text.
func (a DecodeAttempt) OK() bool { return a.Err == nil }

// runChain tries strategies in order and returns the first non-blank result.
// Text is only accepted when it is non-empty after trimming; no quality comparison is made.
// When every strategy fails the last error is returned together with all attempts.
func runChain(ctx context.Context, chain []Strategy, content []byte, logger *zap.Logger) (text, used string, attempts []DecodeAttempt, err error) {
	if len(chain) == 0 {
		return "", "", nil, errors.New("no decoding strategies")
	}
	var lastErr error
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return "", "", attempts, err
		}
		start := time.Now()
		out, err := safeDecode(ctx, s, content)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errNoText
		}
		attempt := DecodeAttempt{Strategy: s.Name, Err: err, Chars: len(out), Duration: time.Since(start)}
		attempts = append(attempts, attempt)
		logger.Debug("decode attempt",
			zap.String("strategy", s.Name),
			zap.Bool("ok", attempt.OK()),
			zap.Int("chars", attempt.Chars),
			zap.Duration("duration", attempt.Duration),
			zap.Error(err),
		)
		if err == nil {
			return out, s.Name, attempts, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", "", attempts, ctxErr
		}
		lastErr = fmt.Errorf("%s: %w", s.Name, err)
	}
	return "", "", attempts, lastErr
}

// safeDecode runs one strategy, turning a panic inside a third-party decoder into an error.
func safeDecode(ctx context.Context, s Strategy, content []byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Decode(ctx, content)
}
