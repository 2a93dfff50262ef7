// Package scheduler runs the background jobs on their RRULE schedules and
// serializes runs of the same job across goroutines and processes.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finara/internal/errors"
	"finara/internal/models"
	"finara/internal/recurrence"
	"finara/internal/uuid"
)

const (
	defaultCheckInterval = time.Minute
	defaultLeaseTTL      = time.Hour
)

// Job is a named unit of background work. The returned value is stored as
// the job's last result and must be JSON-encodable.
type Job interface {
	Name() string
	Execute(ctx context.Context) (any, error)
}

type entry struct {
	job  Job
	rule *recurrence.Rule
}

// Run is the outcome of one job execution.
type Run struct {
	Job        string           `json:"job"`
	Status     models.JobStatus `json:"status"`
	Result     any              `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	NextRunAt  time.Time        `json:"next_run_at"`
}

// Scheduler owns the registered jobs and their persisted JobState rows.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.SugaredLogger
	jobs          map[string]entry
	group         singleflight.Group
	owner         string
	checkInterval time.Duration
	leaseTTL      time.Duration
	now           func() time.Time
}

// New creates a Scheduler. A non-positive interval falls back to one minute.
func New(db *gorm.DB, log *zap.SugaredLogger, checkInterval time.Duration) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = defaultCheckInterval
	}
	return &Scheduler{
		db:            db,
		log:           log,
		jobs:          make(map[string]entry),
		owner:         uuid.New(),
		checkInterval: checkInterval,
		leaseTTL:      defaultLeaseTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Register adds a job under its own name with the given schedule.
func (s *Scheduler) Register(job Job, rule *recurrence.Rule) {
	s.jobs[job.Name()] = entry{job: job, rule: rule}
}

// Names returns the registered job names in sorted order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start blocks, running due jobs every check interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Infow("scheduler started", "jobs", s.Names(), "interval", s.checkInterval)
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check runs every job whose next_run_at has passed. Jobs without a
// next_run_at are only scheduled, never run immediately.
func (s *Scheduler) check(ctx context.Context) {
	now := s.now()
	for _, name := range s.Names() {
		if ctx.Err() != nil {
			return
		}

		state, err := s.ensureState(name)
		if err != nil {
			s.log.Errorw("failed to load job state", "job", name, "error", err)
			continue
		}

		if state.NextRunAt == nil {
			if err := s.schedule(name, now); err != nil {
				s.log.Errorw("failed to schedule job", "job", name, "error", err)
			}
			continue
		}
		if now.Before(*state.NextRunAt) {
			continue
		}

		if _, err := s.RunNow(ctx, name); err != nil {
			if apperrors.Is(err, apperrors.ErrJobAlreadyRunning) {
				s.log.Infow("job already running, skipping tick", "job", name)
				continue
			}
			s.log.Errorw("scheduled job failed", "job", name, "error", err)
		}
	}
}

// RunNow executes the named job immediately. Concurrent calls for the same
// job in this process share one execution and its result. Another process
// holding the job's lease makes RunNow return ErrJobAlreadyRunning.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*Run, error) {
	e, ok := s.jobs[name]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}

	v, err, shared := s.group.Do(name, func() (interface{}, error) {
		return s.execute(ctx, e)
	})
	if shared {
		s.log.Debugw("joined in-flight job run", "job", name)
	}
	run, _ := v.(*Run)
	return run, err
}

func (s *Scheduler) execute(ctx context.Context, e entry) (*Run, error) {
	name := e.job.Name()
	if _, err := s.ensureState(name); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	started := s.now()
	acquired, err := s.acquire(name, started)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !acquired {
		return nil, apperrors.ErrJobAlreadyRunning
	}

	s.log.Infow("job started", "job", name, "owner", s.owner)
	result, runErr := e.job.Execute(ctx)
	finished := s.now()

	run := &Run{
		Job:        name,
		Status:     models.JobStatusSucceeded,
		Result:     result,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if runErr != nil {
		run.Status = models.JobStatusFailed
		run.Error = runErr.Error()
	}

	next, err := e.rule.NextAfter(finished)
	if err != nil {
		s.log.Errorw("failed to compute next run", "job", name, "error", err)
	}
	run.NextRunAt = next

	if err := s.release(run); err != nil {
		s.log.Errorw("failed to release job lease", "job", name, "error", err)
	}

	s.log.Infow("job finished",
		"job", name,
		"status", run.Status,
		"duration_ms", finished.Sub(started).Milliseconds(),
		"next_run_at", next,
	)

	if runErr != nil {
		return run, apperrors.Wrap(apperrors.ErrInternalServer, runErr)
	}
	return run, nil
}

// States returns the persisted state of every registered job.
func (s *Scheduler) States() ([]models.JobState, error) {
	names := s.Names()
	for _, name := range names {
		if _, err := s.ensureState(name); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	var states []models.JobState
	if err := s.db.Where("name IN ?", names).Order("name ASC").Find(&states).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return states, nil
}

func (s *Scheduler) ensureState(name string) (*models.JobState, error) {
	state := &models.JobState{Name: name, LastStatus: models.JobStatusNeverRun}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(state).Error; err != nil {
		return nil, err
	}
	if err := s.db.First(state, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Scheduler) schedule(name string, now time.Time) error {
	next, err := s.jobs[name].rule.NextAfter(now)
	if err != nil {
		return err
	}
	s.log.Infow("job scheduled", "job", name, "next_run_at", next)
	return s.db.Model(&models.JobState{}).
		Where("name = ?", name).
		Update("next_run_at", next).Error
}

// acquire takes the lease on the job row if it is free or expired.
func (s *Scheduler) acquire(name string, now time.Time) (bool, error) {
	res := s.db.Model(&models.JobState{}).
		Where("name = ? AND (locked_until IS NULL OR locked_until < ?)", name, now).
		Updates(map[string]interface{}{
			"locked_by":       s.owner,
			"locked_until":    now.Add(s.leaseTTL),
			"last_started_at": now,
			"last_status":     models.JobStatusRunning,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Scheduler) release(run *Run) error {
	payload, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	updates := map[string]interface{}{
		"locked_by":        "",
		"locked_until":     nil,
		"last_finished_at": run.FinishedAt,
		"last_status":      run.Status,
		"last_result":      string(payload),
		"last_error":       run.Error,
	}
	if !run.NextRunAt.IsZero() {
		updates["next_run_at"] = run.NextRunAt
	}

	res := s.db.Model(&models.JobState{}).
		Where("name = ? AND locked_by = ?", run.Job, s.owner).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("lease lost before release")
	}
	return nil
}
