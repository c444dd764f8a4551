package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestCronParse(t *testing.T) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse("@every 6h")
	if err != nil {
		t.Fatalf("failed to parse cron expression: %v", err)
	}

	now := time.Now()
	next1 := schedule.Next(now)
	next2 := schedule.Next(next1)

	if !next2.After(next1) {
		t.Fatalf("expected next2 to be after next1, got next1=%v next2=%v", next1, next2)
	}
}

func TestSchedulerScheduleStatus(t *testing.T) {
	s := NewScheduler(func(context.Context) error { return nil }, nil)

	if err := s.Schedule("@every 1m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if err := s.Schedule("not a schedule"); err == nil {
		t.Fatalf("Schedule accepted an invalid expression")
	}

	st := s.Status()
	if st.Running {
		t.Fatalf("scheduler should not be running")
	}
	if st.NextRun.IsZero() {
		t.Fatalf("next run should be set after scheduling")
	}
	if st.Schedule != "@every 1m" {
		t.Fatalf("schedule = %q", st.Schedule)
	}
}

func TestSchedulerSkip(t *testing.T) {
	s := NewScheduler(func(context.Context) error { return nil }, nil)
	if err := s.Skip(); err == nil {
		t.Fatalf("Skip without a schedule should fail")
	}
	if err := s.Schedule("@every 10m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	s.Start()
	defer s.Stop()

	orig := s.Status().NextRun
	if orig.IsZero() {
		t.Fatalf("expected next run after scheduling")
	}

	if err := s.Skip(); err != nil {
		t.Fatalf("Skip returned error: %v", err)
	}
	skipped := s.Status().NextRun
	if !skipped.After(orig) {
		t.Fatalf("expected skip to move schedule forward, got %v <= %v", skipped, orig)
	}
}

func TestSchedulerRunCycle(t *testing.T) {
	taskCh := make(chan struct{}, 4)
	errCh := make(chan error, 4)

	task := func(context.Context) error {
		taskCh <- struct{}{}
		return nil
	}
	onError := func(data any) {
		if err, ok := data.(error); ok {
			errCh <- err
		}
	}

	s := NewScheduler(task, onError)
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-taskCh:
	case <-time.After(3 * time.Second):
		t.Fatalf("task did not execute in time")
	}

	select {
	case err := <-errCh:
		t.Fatalf("unexpected error callback: %v", err)
	default:
	}
}

func TestSchedulerTaskFailure(t *testing.T) {
	errCh := make(chan error, 4)

	s := NewScheduler(func(context.Context) error { return errors.New("boom") }, func(data any) {
		if err, ok := data.(error); ok {
			errCh <- err
		}
	})
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected error callback from failed task")
	}

	if st := s.Status(); st.LastError == "" || st.LastRun.IsZero() {
		t.Fatalf("status does not record the failure: %+v", st)
	}
}

func TestSchedulerRunNow(t *testing.T) {
	runs := 0
	s := NewScheduler(func(context.Context) error { runs++; return nil }, nil)

	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow returned error: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if s.Status().LastRun.IsZero() {
		t.Fatalf("last run not recorded")
	}
}
