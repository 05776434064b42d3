package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sentiment-dashboard/shared/monitoring"
)

type summary string

func (s summary) GetSummary() string { return string(s) }

type stubAgent struct {
	initErr error
	runErr  error
	partial error
	runs    atomic.Int32
}

func (a *stubAgent) Name() string { return "Stub" }

func (a *stubAgent) Initialize(ctx context.Context) error { return a.initErr }

func (a *stubAgent) RunOnce(ctx context.Context, events *AgentEvents) error {
	a.runs.Add(1)
	if a.runErr != nil {
		return a.runErr
	}
	if a.partial != nil {
		events.OnPartialFailure(a.partial, time.Millisecond)
		return nil
	}
	events.OnSuccess(summary("loaded"), time.Millisecond)
	return nil
}

func TestInitialize(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		agent := &stubAgent{}
		m := monitoring.NewMonitor()
		if err := New("", agent, m).Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if agent.runs.Load() != 1 {
			t.Errorf("runs = %d, want 1", agent.runs.Load())
		}
		if !strings.Contains(m.GetStatusSummary(), "loaded") {
			t.Errorf("status = %q", m.GetStatusSummary())
		}
	})

	t.Run("InitError", func(t *testing.T) {
		agent := &stubAgent{initErr: errors.New("bad config")}
		err := New("", agent, monitoring.NewMonitor()).Initialize(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failed to initialize agent") {
			t.Fatalf("Initialize() error = %v", err)
		}
		if agent.runs.Load() != 0 {
			t.Error("agent should not run after failed initialization")
		}
	})

	t.Run("RunError", func(t *testing.T) {
		agent := &stubAgent{runErr: errors.New("missing file")}
		m := monitoring.NewMonitor()
		if err := New("", agent, m).Initialize(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if m.IsHealthy() {
			t.Error("monitor should be unhealthy after failed run")
		}
	})
}

func TestRunOncePartialFailure(t *testing.T) {
	agent := &stubAgent{partial: errors.New("kept previous data")}
	m := monitoring.NewMonitor()
	m.RecordSuccess("initial", time.Millisecond)

	if err := New("", agent, m).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !m.IsHealthy() {
		t.Error("partial failure should keep the monitor healthy")
	}
	if !strings.Contains(m.GetStatusSummary(), "kept previous data") {
		t.Errorf("status = %q", m.GetStatusSummary())
	}
}

func TestStart(t *testing.T) {
	t.Run("InvalidSchedule", func(t *testing.T) {
		s := New("not a cron spec", &stubAgent{}, monitoring.NewMonitor())
		if err := s.Start(context.Background()); err == nil {
			t.Fatal("expected error for invalid schedule")
		}
	})

	t.Run("RunsOnSchedule", func(t *testing.T) {
		agent := &stubAgent{}
		s := New("* * * * * *", agent, monitoring.NewMonitor())

		ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
		defer cancel()

		if err := s.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Start() error = %v, want deadline exceeded", err)
		}
		if agent.runs.Load() == 0 {
			t.Error("agent never ran on schedule")
		}
	})

	t.Run("NoSchedule", func(t *testing.T) {
		agent := &stubAgent{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := New("", agent, monitoring.NewMonitor()).Start(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Start() error = %v, want canceled", err)
		}
		if agent.runs.Load() != 0 {
			t.Error("agent should not run without a schedule")
		}
	})
}
