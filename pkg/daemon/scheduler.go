package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type NotifyFunc func(data any)

// TaskFunc represents a runnable task.
type TaskFunc func(ctx context.Context) error

// SchedulerStatus is what GET /api/cache reports about refreshes.
type SchedulerStatus struct {
	Schedule  string    `json:"schedule,omitempty"`
	NextRun   time.Time `json:"nextRun,omitempty"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Running   bool      `json:"running"`
}

// Scheduler runs Task on a cron schedule. Runs never overlap, manual runs
// included.
type Scheduler struct {
	Task    TaskFunc   // task callback
	OnError NotifyFunc // called on task error

	parser cron.Parser
	cron   *cron.Cron
	entry  cron.EntryID

	mu       sync.Mutex
	expr     string
	schedule cron.Schedule
	running  bool
	skipNext bool
	lastRun  time.Time
	lastErr  error

	runMu sync.Mutex
}

func NewScheduler(task TaskFunc, onError NotifyFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		Task:    task,
		OnError: onError,
		parser:  parser,
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Schedule replaces the current schedule. It can be called while running.
func (s *Scheduler) Schedule(cronExpr string) error {
	sh, err := s.parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cronExpr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = s.cron.Schedule(sh, cron.FuncJob(s.scheduled))
	s.expr = cronExpr
	s.schedule = sh
	s.skipNext = false
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	logrus.Debug("scheduler started")
}

// Stop stops scheduling and waits for a running task to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logrus.Debug("scheduler stopped")
}

// Skip skips the next scheduled run.
func (s *Scheduler) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return fmt.Errorf("no active schedule to skip")
	}
	s.skipNext = true
	return nil
}

func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SchedulerStatus{
		Schedule: s.expr,
		LastRun:  s.lastRun,
		Running:  s.running,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.schedule != nil {
		next := s.cron.Entry(s.entry).Next
		if next.IsZero() {
			next = s.schedule.Next(time.Now())
		}
		if s.skipNext {
			next = s.schedule.Next(next)
		}
		st.NextRun = next
	}
	return st
}

// RunNow runs the task immediately, waiting for a scheduled run in
// progress to finish first.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	err := s.Task(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	return err
}

func (s *Scheduler) scheduled() {
	s.mu.Lock()
	if s.skipNext {
		s.skipNext = false
		s.mu.Unlock()
		logrus.Debug("skipped scheduled task")
		return
	}
	s.mu.Unlock()

	logrus.Debug("running scheduled task")
	if err := s.RunNow(context.Background()); err != nil {
		s.sendError(fmt.Errorf("task failed: %v", err))
	}
}

func (s *Scheduler) sendError(err error) {
	if s.OnError == nil {
		return
	}

	go s.OnError(err)
}
