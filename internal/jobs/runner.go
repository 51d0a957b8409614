/**
 * @description
 * Scheduled job runner.
 * Chains schedule ingestion and picks evaluation for one league and reports
 * a job-status summary. A Redis lock keeps multi-replica deployments (or an
 * HTTP trigger racing the worker) from double-running a league's pipeline.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 * - github.com/google/uuid
 * - backend/internal/services
 *
 * @notes
 * - The lock is best-effort: if Redis is unreachable the job still runs,
 *   because a duplicated run only duplicates rows while a skipped run
 *   loses a day's picks.
 */

package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sharpline/backend/internal/logger"
	"github.com/sharpline/backend/internal/models"
	"github.com/sharpline/backend/internal/services"
)

const lockTTL = 30 * time.Minute

// JobStatus is the summary returned by a scheduled run
type JobStatus struct {
	OK             bool                     `json:"ok"`
	RunID          string                   `json:"run_id"`
	Jobs           []string                 `json:"jobs"`
	Skipped        bool                     `json:"skipped,omitempty"`
	ScheduleResult *services.ScheduleResult `json:"scheduleResult,omitempty"`
	EvalResult     *services.EvalResult     `json:"evalResult,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

type Runner struct {
	Schedule *services.ScheduleService
	Picks    *services.PicksService
	Redis    *redis.Client
}

func NewRunner(schedule *services.ScheduleService, picks *services.PicksService, rdb *redis.Client) *Runner {
	return &Runner{
		Schedule: schedule,
		Picks:    picks,
		Redis:    rdb,
	}
}

// RunLeagueJob runs ingestion then evaluation for one league.
func (r *Runner) RunLeagueJob(ctx context.Context, league models.League) JobStatus {
	status := JobStatus{RunID: uuid.NewString(), Jobs: []string{}}

	release, acquired := r.acquireLock(ctx, league, status.RunID)
	if !acquired {
		logger.Info("Skipping %s job: another run holds the lock", league.Upper())
		status.OK = true
		status.Skipped = true
		return status
	}
	defer release()

	scheduleResult, err := r.Schedule.RunScheduleJob(ctx, league)
	if err != nil {
		logger.Error("Error running %s schedule job: %v", league.Upper(), err)
		status.Error = err.Error()
		return status
	}
	status.Jobs = append(status.Jobs, string(league)+"-schedule")
	status.ScheduleResult = scheduleResult

	evalResult, err := r.Picks.EvaluatePicks(ctx, league)
	if err != nil {
		logger.Error("Error running %s picks evaluation: %v", league.Upper(), err)
		status.Error = err.Error()
		return status
	}
	status.Jobs = append(status.Jobs, string(league)+"-picks")
	status.EvalResult = evalResult

	status.OK = true
	return status
}

// acquireLock takes the league's job lock via SetNX. Returns a release
// function and whether the lock was obtained.
func (r *Runner) acquireLock(ctx context.Context, league models.League, runID string) (func(), bool) {
	noop := func() {}
	if r.Redis == nil {
		return noop, true
	}

	key := "jobs:lock:" + string(league)
	ok, err := r.Redis.SetNX(ctx, key, runID, lockTTL).Result()
	if err != nil {
		logger.Error("Redis error acquiring %s job lock, proceeding without it: %v", league.Upper(), err)
		return noop, true
	}
	if !ok {
		return noop, false
	}

	return func() {
		// Only release our own lock; an expired lock may belong to a newer run
		current, err := r.Redis.Get(context.Background(), key).Result()
		if err == nil && current == runID {
			_ = r.Redis.Del(context.Background(), key).Err()
		}
	}, true
}
