// Package poller watches a job's status until it reaches a terminal state,
// bounded by a wall-clock ceiling. It is the client-side counterpart of the
// status endpoint.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"xyen-quiz-service/internal/domain"
)

const (
	// DefaultInterval between consecutive status checks.
	DefaultInterval = 5 * time.Second
	// DefaultMaxWait before giving up and telling the user to check back
	// later. The job itself keeps running server-side.
	DefaultMaxWait = 10 * time.Minute
)

// StatusFunc performs one status check.
type StatusFunc func(ctx context.Context, quizID string) (domain.QuizStatus, error)

// Watcher polls a job's status on a fixed interval. Checks are strictly
// sequential: the next one is scheduled only after the previous resolves.
type Watcher struct {
	Check    StatusFunc
	Interval time.Duration // defaults to DefaultInterval
	MaxWait  time.Duration // defaults to DefaultMaxWait
	now      func() time.Time
}

// NewWatcher builds a watcher with the default cadence.
func NewWatcher(check StatusFunc) *Watcher {
	return &Watcher{Check: check, Interval: DefaultInterval, MaxWait: DefaultMaxWait}
}

// Watch blocks, checking the job's status until it turns terminal, the wait
// ceiling is hit, or ctx is cancelled. Exactly one of onTerminal/onTimeout is
// invoked unless the context ends first; cancellation clears the pending
// timer before returning, so nothing fires afterwards.
func (w *Watcher) Watch(ctx context.Context, quizID string, onTerminal func(domain.QuizStatus), onTimeout func()) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxWait := w.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	now := w.now
	if now == nil {
		now = time.Now
	}

	deadline := now().Add(maxWait)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		status, err := w.Check(ctx, quizID)
		if err != nil {
			// A flaky check is not a terminal outcome; keep polling.
			log.Printf("poller: status check failed for quiz %s: %v", quizID, err)
		} else if status.IsTerminal() {
			onTerminal(status)
			return
		}

		if now().After(deadline) {
			onTimeout()
			return
		}
		timer.Reset(interval)
	}
}

// HTTPStatus returns a StatusFunc backed by the service's status endpoint,
// authenticated with the given bearer token.
func HTTPStatus(baseURL, token string, httpClient *http.Client) StatusFunc {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return func(ctx context.Context, quizID string) (domain.QuizStatus, error) {
		url := fmt.Sprintf("%s/api/v1/quizzes/%s/status", baseURL, quizID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return "", domain.ErrQuizNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("status endpoint returned %d", resp.StatusCode)
		}

		var out struct {
			Status domain.QuizStatus `json:"status"`
			QuizID string            `json:"quizId"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode status response: %w", err)
		}
		return out.Status, nil
	}
}
