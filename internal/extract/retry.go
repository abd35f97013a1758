// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs structured extraction against the document
// understanding API: a single-exchange direct mode for ordinary documents
// and a three-phase chunked pipeline for large ones.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// Attempt is the raw outcome of one exchange with the remote model:
// the response text plus completion and token-usage metadata.
type Attempt struct {
	Text   string
	Finish types.FinishReason
	Usage  types.TokenUsage
}

// Generator abstracts one exchange against the remote model so tests can
// supply a mock. Direct-mode implementations carry the whole document in
// every call; cached-mode implementations reference a server-side content
// cache and send only the instruction text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Attempt, error)
}

// Retryable failure conditions surfaced by the classifier. The pipeline
// inspects ErrEmptyResponse after exhaustion to downgrade it to a warning
// in cached mode.
var (
	ErrEmptyResponse = errors.New("model returned empty output")

	errSafetyBlock    = errors.New("response blocked by safety filter")
	errRecitationStop = errors.New("response blocked for recitation")
)

// status is the classification of one attempt.
type status int

const (
	statusOK status = iota
	statusRetry
	statusFatal
)

// outcome pairs an attempt's classification with the failure it carries.
type outcome struct {
	status status
	err    error
}

// classify sorts an attempt into success, retryable failure, or fatal
// failure. Truncation (max_tokens) counts as success: retrying with the
// same ceiling reproduces it, so the caller reports it via the finish
// reason instead.
func classify(att Attempt, err error) outcome {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcome{statusFatal, err}
	case err != nil:
		return outcome{statusRetry, err}
	}

	switch att.Finish {
	case types.FinishSafety:
		return outcome{statusRetry, errSafetyBlock}
	case types.FinishRecitation:
		return outcome{statusRetry, errRecitationStop}
	case types.FinishEmpty:
		return outcome{statusRetry, ErrEmptyResponse}
	}

	if strings.TrimSpace(att.Text) == "" {
		return outcome{statusRetry, ErrEmptyResponse}
	}

	return outcome{statusOK, nil}
}

// backoffBase controls the unit for exponential backoff. Tests override
// this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry runs fn up to maxRetries times. Before attempt k>0 it
// waits 2^k backoff units (2, 4, 8, 16 for attempts 1..4). Token usage of
// every attempt, failed ones included, accrues into usage: retried calls
// are still billed. On exhaustion the last failure is returned.
func callWithRetry(ctx context.Context, fn func(context.Context) (Attempt, error), maxRetries int, usage *types.TokenUsage) (Attempt, error) {
	if maxRetries <= 0 {
		maxRetries = types.DefaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * backoffBase
			select {
			case <-ctx.Done():
				return Attempt{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		att, err := fn(ctx)
		if usage != nil {
			usage.Add(att.Usage)
		}

		out := classify(att, err)
		switch out.status {
		case statusOK:
			return att, nil
		case statusFatal:
			return Attempt{}, out.err
		}
		lastErr = out.err
	}

	return Attempt{}, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// stripFences removes a Markdown code fence wrapping a JSON payload. The
// model occasionally fences its output even when asked for raw JSON.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
