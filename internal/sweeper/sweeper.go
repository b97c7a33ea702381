// Package sweeper runs the scheduled content expiry jobs: expired streams are deleted,
// expired announcements and ads are deactivated.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pitchside/internal/config"
	"pitchside/internal/middleware"
	"pitchside/internal/observability"
	"pitchside/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
)

// Job names.
const (
	JobStreams       = "streams"
	JobAnnouncements = "announcements"
	JobAds           = "ads"
)

// Config holds the cron schedules and the zone they are evaluated in.
type Config struct {
	StreamsSchedule       string
	AnnouncementsSchedule string
	AdsSchedule           string
	Location              *time.Location
}

// DefaultConfig returns hourly stream sweeps and daily midnight announcement and ad sweeps.
func DefaultConfig() Config {
	return Config{
		StreamsSchedule:       "0 * * * *",
		AnnouncementsSchedule: "0 0 * * *",
		AdsSchedule:           "0 0 * * *",
		Location:              time.Local,
	}
}

// ConfigFrom reads the sweeper settings from the application config.
func ConfigFrom(cfg *config.Config) (Config, error) {
	out := DefaultConfig()
	if cfg.SweepStreamsSchedule != "" {
		out.StreamsSchedule = cfg.SweepStreamsSchedule
	}
	if cfg.SweepAnnouncementsSchedule != "" {
		out.AnnouncementsSchedule = cfg.SweepAnnouncementsSchedule
	}
	if cfg.SweepAdsSchedule != "" {
		out.AdsSchedule = cfg.SweepAdsSchedule
	}
	if cfg.SweepTimezone != "" {
		loc, err := time.LoadLocation(cfg.SweepTimezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SWEEP_TIMEZONE %q: %w", cfg.SweepTimezone, err)
		}
		out.Location = loc
	}
	return out, nil
}

// JobStatus is the last known outcome of one job.
type JobStatus struct {
	Name         string     `json:"name"`
	Schedule     string     `json:"schedule"`
	Runs         int64      `json:"runs"`
	LastRun      *time.Time `json:"lastRun"`
	LastAffected int64      `json:"lastAffected"`
	LastDuration string     `json:"lastDuration,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
	NextRun      *time.Time `json:"nextRun"`
}

type job struct {
	name     string
	schedule string
	sweep    func(ctx context.Context, now time.Time) (int64, error)
	entryID  cron.EntryID

	// running keeps a manual run and a scheduled run of the same job apart.
	running sync.Mutex
}

// Sweeper owns the cron scheduler and the per-job status.
type Sweeper struct {
	clock clockwork.Clock
	cron  *cron.Cron
	jobs  []*job

	mu     sync.RWMutex
	status map[string]JobStatus
}

// New registers the three expiry jobs. The scheduler does not run until Start.
func New(repo repository.SweepRepository, clock clockwork.Clock, cfg Config) (*Sweeper, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	logger := cronLogger{}
	s := &Sweeper{
		clock: clock,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs: []*job{
			{name: JobStreams, schedule: cfg.StreamsSchedule, sweep: repo.DeleteExpiredStreams},
			{name: JobAnnouncements, schedule: cfg.AnnouncementsSchedule, sweep: repo.DeactivateExpiredAnnouncements},
			{name: JobAds, schedule: cfg.AdsSchedule, sweep: repo.DeactivateExpiredAds},
		},
		status: make(map[string]JobStatus, 3),
	}

	for _, j := range s.jobs {
		id, err := s.cron.AddFunc(j.schedule, func() { s.run(context.Background(), j) })
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s sweep: %w", j.schedule, j.name, err)
		}
		j.entryID = id
		s.status[j.name] = JobStatus{Name: j.name, Schedule: j.schedule}
	}
	return s, nil
}

// Start launches the scheduler in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
	middleware.Logger.Info("Sweeper started",
		slog.Int("jobs", len(s.jobs)),
		slog.String("location", s.cron.Location().String()),
	)
}

// Stop stops scheduling new runs and waits for in-flight runs or ctx, whichever ends first.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		middleware.Logger.Info("Sweeper stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweeper stop: %w", ctx.Err())
	}
}

// RunOnce runs every job immediately, one after another, and returns their status.
func (s *Sweeper) RunOnce(ctx context.Context) []JobStatus {
	for _, j := range s.jobs {
		s.run(ctx, j)
	}
	return s.Status()
}

// Status returns a snapshot of every job in registration order.
func (s *Sweeper) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := s.status[j.name]
		if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
			st.NextRun = &next
		}
		out = append(out, st)
	}
	return out
}

// run executes one job. Errors are logged and recorded, never returned or retried.
func (s *Sweeper) run(ctx context.Context, j *job) {
	if !j.running.TryLock() {
		middleware.Logger.WarnContext(ctx, "Sweep still running, skipping", slog.String("job", j.name))
		return
	}
	defer j.running.Unlock()

	span, ctx := observability.NewSpan(ctx, "sweeper."+j.name, attribute.String("sweeper.job", j.name))
	defer span.End()

	now := s.clock.Now()
	affected, err := j.sweep(ctx, now)
	took := s.clock.Since(now)

	st := JobStatus{
		Name:         j.name,
		Schedule:     j.schedule,
		LastRun:      &now,
		LastAffected: affected,
		LastDuration: took.String(),
	}

	if err != nil {
		span.SetError(err)
		st.LastAffected = 0
		st.LastError = err.Error()
		observability.RecordSweep(j.name, observability.SweepFailed, 0, took, now)
		middleware.Logger.ErrorContext(ctx, "Sweep failed",
			slog.String("job", j.name),
			slog.String("error", err.Error()),
		)
	} else {
		span.AddAttributes(attribute.Int64("sweeper.affected", affected))
		observability.RecordSweep(j.name, observability.SweepSucceeded, affected, took, now)
		middleware.Logger.InfoContext(ctx, "Sweep completed",
			slog.String("job", j.name),
			slog.Int64("affected", affected),
			slog.Duration("took", took),
		)
	}

	s.mu.Lock()
	st.Runs = s.status[j.name].Runs + 1
	s.status[j.name] = st
	s.mu.Unlock()
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	middleware.Logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)
	middleware.Logger.Error("cron: "+msg, args...)
}
