package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// EndGameTrigger registers one-shot deadline schedules with the external
// scheduler service. Arming is an upsert keyed by the schedule name, so
// re-arming replaces any previous registration; disarming a schedule that
// does not exist is not an error.
type EndGameTrigger interface {
	Arm(ctx context.Context, gameID string, fireAt time.Time) error
	Disarm(ctx context.Context, gameID string) error
}

// schedulerTrigger talks to the scheduler's REST API. Schedules live in a
// named group and fire a POST back to the engine's trigger callback.
type schedulerTrigger struct {
	baseURL     string
	group       string
	callbackURL string
	sharedKey   string
	httpClient  *http.Client
	maxRetries  int
	logger      *slog.Logger
}

// NewSchedulerTrigger creates a trigger adapter over the scheduler service.
func NewSchedulerTrigger(baseURL, group, callbackURL, sharedKey string, logger *slog.Logger) EndGameTrigger {
	return &schedulerTrigger{
		baseURL:     baseURL,
		group:       group,
		callbackURL: callbackURL,
		sharedKey:   sharedKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		logger:     logger,
	}
}

func scheduleName(gameID string) string {
	return "end-game-" + gameID
}

// scheduleRequest is the upsert body for a one-shot schedule.
type scheduleRequest struct {
	FireAt      string            `json:"fireAt"`
	CallbackURL string            `json:"callbackUrl"`
	Payload     map[string]string `json:"payload"`
}

func (t *schedulerTrigger) Arm(ctx context.Context, gameID string, fireAt time.Time) error {
	body, err := json.Marshal(scheduleRequest{
		FireAt:      fireAt.UTC().Format(time.RFC3339),
		CallbackURL: t.callbackURL,
		Payload:     map[string]string{"gameId": gameID},
	})
	if err != nil {
		return fmt.Errorf("%w: encoding schedule: %v", ErrTrigger, err)
	}

	_, err = t.doRequest(ctx, http.MethodPut, t.scheduleURL(gameID), body)
	if err != nil {
		return err
	}
	t.logger.Info("armed end-game trigger", "game", gameID, "schedule", scheduleName(gameID), "fireAt", fireAt)
	return nil
}

func (t *schedulerTrigger) Disarm(ctx context.Context, gameID string) error {
	_, err := t.doRequest(ctx, http.MethodDelete, t.scheduleURL(gameID), nil)
	if err != nil {
		return err
	}
	t.logger.Info("disarmed end-game trigger", "game", gameID, "schedule", scheduleName(gameID))
	return nil
}

func (t *schedulerTrigger) scheduleURL(gameID string) string {
	return fmt.Sprintf("%s/schedules/%s/%s", t.baseURL, t.group, scheduleName(gameID))
}

// doRequest performs the scheduler call with bounded retries and exponential
// backoff. A 404 on DELETE means the schedule is already gone and counts as
// success.
func (t *schedulerTrigger) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTrigger, ctx.Err())
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("%w: creating request: %v", ErrTrigger, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if t.sharedKey != "" {
			req.Header.Set("X-Scheduler-Key", t.sharedKey)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
			return respBody, nil
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("scheduler returned %d: %s", resp.StatusCode, respBody)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: scheduler returned %d: %s", ErrTrigger, resp.StatusCode, respBody)
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("%w: max retries exceeded: %v", ErrTrigger, lastErr)
}

// noopTrigger is used when no scheduler is configured; games with a duration
// then run until stopped manually.
type noopTrigger struct{}

// NewNoopTrigger returns a trigger that does nothing.
func NewNoopTrigger() EndGameTrigger { return noopTrigger{} }

func (noopTrigger) Arm(context.Context, string, time.Time) error { return nil }
func (noopTrigger) Disarm(context.Context, string) error         { return nil }
