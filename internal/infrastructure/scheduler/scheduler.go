// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus is the outcome of the most recent run of a job
type JobStatus string

const (
	JobStatusNeverRun JobStatus = "NEVER_RUN"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusSuccess  JobStatus = "SUCCESS"
	JobStatusFailed   JobStatus = "FAILED"
)

// JobFunc is the body of a scheduled job. The int64 is the number of rows it touched.
type JobFunc func(ctx context.Context) (int64, error)

// JobRun describes the last execution of a job
type JobRun struct {
	Name        string
	Schedule    string
	Status      JobStatus
	Affected    int64
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	NextRunAt   *time.Time
}

type job struct {
	name     string
	schedule string
	fn       JobFunc
	entryID  cron.EntryID
	last     JobRun
}

// Scheduler wraps a cron runner with per-job timeouts and run history.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger
	baseCtx context.Context

	mu        sync.Mutex
	jobs      map[string]*job
	isRunning bool
	cancel    context.CancelFunc
}

// New creates a scheduler. jobTimeout bounds every run; zero means five minutes.
func New(jobTimeout time.Duration, logger *zap.Logger) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLog := cronLogger{logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		timeout: jobTimeout,
		logger:  logger,
		baseCtx: context.Background(),
		jobs:    make(map[string]*job),
	}
}

// Register adds a job under a standard five-field cron spec or a descriptor such as "@every 1h".
func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: job %s registered twice", ErrInvalidConfig, name)
	}
	j := &job{
		name:     name,
		schedule: schedule,
		fn:       fn,
		last:     JobRun{Name: name, Schedule: schedule, Status: JobStatusNeverRun},
	}
	id, err := s.cron.AddFunc(schedule, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

// Start begins firing jobs. Jobs receive a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop halts the cron loop and waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) (JobRun, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return JobRun{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	s.run(j)
	return s.lastRun(j), nil
}

// Runs returns the last run of every job sorted by name.
func (s *Scheduler) Runs() []JobRun {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	runs := make([]JobRun, 0, len(jobs))
	for _, j := range jobs {
		runs = append(runs, s.lastRun(j))
	}
	sort.Slice(runs, func(a, b int) bool { return runs[a].Name < runs[b].Name })
	return runs
}

func (s *Scheduler) lastRun(j *job) JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := j.last
	if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
		run.NextRunAt = &next
	}
	return run
}

func (s *Scheduler) run(j *job) {
	s.mu.Lock()
	base := s.baseCtx
	started := time.Now()
	j.last.Status = JobStatusRunning
	j.last.StartedAt = &started
	j.last.CompletedAt = nil
	j.last.Error = ""
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()
	affected, err := j.fn(ctx)
	finished := time.Now()

	s.mu.Lock()
	j.last.Affected = affected
	j.last.CompletedAt = &finished
	if err != nil {
		j.last.Status = JobStatusFailed
		j.last.Error = err.Error()
	} else {
		j.last.Status = JobStatusSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", j.name),
			zap.Duration("duration", finished.Sub(started)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Scheduled job completed",
		zap.String("job", j.name),
		zap.Int64("affected", affected),
		zap.Duration("duration", finished.Sub(started)),
	)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
