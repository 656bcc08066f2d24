package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerTriggerArm(t *testing.T) {
	var gotPath, gotMethod, gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get("X-Scheduler-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	trigger := NewSchedulerTrigger(srv.URL, "vulture", "https://engine/triggers/end-game", "s3cret", testLogger())
	fireAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := trigger.Arm(context.Background(), "g1", fireAt); err != nil {
		t.Fatalf("arm: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/schedules/vulture/end-game-g1" {
		t.Errorf("unexpected schedule path %q", gotPath)
	}
	if gotKey != "s3cret" {
		t.Errorf("expected shared key header, got %q", gotKey)
	}
	body := string(gotBody)
	for _, want := range []string{`"2026-03-01T12:00:00Z"`, `"gameId":"g1"`, `"https://engine/triggers/end-game"`} {
		if !strings.Contains(body, want) {
			t.Errorf("schedule body missing %s: %s", want, body)
		}
	}
}

func TestSchedulerTriggerDisarmTolerates404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	trigger := NewSchedulerTrigger(srv.URL, "vulture", "", "", testLogger())
	if err := trigger.Disarm(context.Background(), "gone"); err != nil {
		t.Fatalf("disarm of a missing schedule must succeed, got %v", err)
	}
}

func TestSchedulerTriggerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	trigger := NewSchedulerTrigger(srv.URL, "vulture", "", "", testLogger())
	if err := trigger.Arm(context.Background(), "g1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("arm should succeed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSchedulerTriggerClientErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	trigger := NewSchedulerTrigger(srv.URL, "vulture", "", "", testLogger())
	err := trigger.Arm(context.Background(), "g1", time.Now().Add(time.Hour))
	if !errors.Is(err, ErrTrigger) {
		t.Fatalf("expected ErrTrigger, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", calls.Load())
	}
}
