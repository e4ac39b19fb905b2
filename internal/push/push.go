// Package push delivers signed reputation notifications to subscriber
// URLs. Each URL runs an independent retry loop; one subscriber being down
// never delays or cancels delivery to the others.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/signer"
)

// State is a per-URL delivery state.
type State string

const (
	StateSign    State = "sign"
	StateSend    State = "send"
	StateWait    State = "wait"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

const (
	defaultMaxAttempts    = 10
	defaultBackoffBase    = 5 * time.Second
	defaultBackoffStep    = 5 * time.Second
	defaultBackoffCap     = 30 * time.Second
	defaultAttemptTimeout = 10 * time.Second
)

// Payload is the JSON body POSTed to subscribers: the full current
// aggregate, so deliveries are idempotent and out-of-order jobs are
// harmless. Average is null when the reviewee has no reviews.
type Payload struct {
	RevieweeID      string   `json:"reviewee_id"`
	Count           int64    `json:"count"`
	Average         *float64 `json:"average"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// Outcome is the terminal result of one URL's delivery.
type Outcome struct {
	URL      string
	State    State
	Attempts int
}

// Deliverer pushes a reputation snapshot to subscriber URLs with signed
// requests and per-URL retry.
type Deliverer struct {
	client *http.Client
	signer signer.Signer
	logger *slog.Logger

	maxAttempts    int
	backoffBase    time.Duration
	backoffStep    time.Duration
	backoffCap     time.Duration
	attemptTimeout time.Duration

	nowFunc func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewDeliverer creates a deliverer with the production retry schedule:
// 10 attempts, backoff growing 5s per retry capped at 30s, 10s per attempt.
func NewDeliverer(client *http.Client, s signer.Signer, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		client:         client,
		signer:         s,
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		backoffBase:    defaultBackoffBase,
		backoffStep:    defaultBackoffStep,
		backoffCap:     defaultBackoffCap,
		attemptTimeout: defaultAttemptTimeout,
		nowFunc:        time.Now,
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewPayload builds the wire payload from a snapshot.
func NewPayload(snap domain.Snapshot) Payload {
	return Payload{
		RevieweeID:      snap.RevieweeID,
		Count:           snap.Count,
		Average:         snap.Average,
		ConfidenceScore: snap.ConfidenceScore,
	}
}

// Push serializes the payload once and fans out one delivery task per URL.
// It returns when every URL has reached a terminal state.
func (d *Deliverer) Push(ctx context.Context, payload Payload, urls []string) []Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("marshal push payload",
			slog.String("reviewee_id", payload.RevieweeID), slog.Any("error", err))
		return nil
	}

	outcomes := make([]Outcome, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, u, payload.RevieweeID, body)
		}(i, u)
	}
	wg.Wait()

	return outcomes
}

// deliver runs the retry state machine for a single URL. Every attempt
// re-signs with a fresh timestamp; signatures are time-bound and must not
// be reused across attempts.
func (d *Deliverer) deliver(ctx context.Context, rawURL, revieweeID string, body []byte) Outcome {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		d.logger.Error("push delivery to unusable url",
			slog.String("url", rawURL), slog.String("reviewee_id", revieweeID))
		deliveriesTotal.WithLabelValues(outcomeFailed).Inc()
		return Outcome{URL: rawURL, State: StateFailed}
	}

	path := parsed.RequestURI()

	for attempt := 1; ; attempt++ {
		timestamp := d.nowFunc().Unix()
		sig := d.signer.Sign(http.MethodPost, path, timestamp, body)

		err := d.send(ctx, rawURL, timestamp, sig, body)
		if err == nil {
			attemptsTotal.WithLabelValues(outcomeSuccess).Inc()
			deliveriesTotal.WithLabelValues(outcomeSuccess).Inc()
			deliveryAttempts.Observe(float64(attempt))
			return Outcome{URL: rawURL, State: StateSuccess, Attempts: attempt}
		}

		attemptsTotal.WithLabelValues(outcomeFailed).Inc()
		d.logger.Warn("push delivery attempt failed",
			slog.String("url", rawURL),
			slog.String("reviewee_id", revieweeID),
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		if attempt >= d.maxAttempts {
			d.logger.Error("push delivery abandoned",
				slog.String("url", rawURL),
				slog.String("reviewee_id", revieweeID),
				slog.Int("attempts", attempt))
			deliveriesTotal.WithLabelValues(outcomeFailed).Inc()
			deliveryAttempts.Observe(float64(attempt))
			return Outcome{URL: rawURL, State: StateFailed, Attempts: attempt}
		}

		if err := d.sleep(ctx, d.backoff(attempt)); err != nil {
			deliveriesTotal.WithLabelValues(outcomeFailed).Inc()
			return Outcome{URL: rawURL, State: StateFailed, Attempts: attempt}
		}
	}
}

// backoff returns the wait before the next attempt: 5s after the first
// failure, growing 5s per retry, capped at 30s.
func (d *Deliverer) backoff(attempt int) time.Duration {
	wait := d.backoffBase + time.Duration(attempt-1)*d.backoffStep
	if wait > d.backoffCap {
		wait = d.backoffCap
	}
	return wait
}

// send performs one signed attempt. Any status other than 200 or 204 is a
// failure.
func (d *Deliverer) send(ctx context.Context, rawURL string, timestamp int64, sig string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signer.HeaderSignature, sig)
	req.Header.Set(signer.HeaderAddress, d.signer.Address())
	req.Header.Set(signer.HeaderTimestamp, fmt.Sprintf("%d", timestamp))

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("subscriber returned status %d", resp.StatusCode)
	}

	return nil
}
