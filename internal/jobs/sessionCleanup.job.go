package jobs

import (
	"context"
	"time"

	"qrate/internal/repositories"
	"qrate/internal/services"
	logger "github.com/Bparsons0904/goLogger"
)

// SessionCleanupJob sweeps event sessions that have gone quiet, so active
// guest counts reflect who is actually still at the party.
type SessionCleanupJob struct {
	sessions repositories.SessionRepository
	idleFor  time.Duration
	log      logger.Logger
	schedule services.Schedule
}

func NewSessionCleanupJob(
	sessions repositories.SessionRepository,
	idleFor time.Duration,
	schedule services.Schedule,
) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		idleFor:  idleFor,
		log:      logger.New("sessionCleanupJob"),
		schedule: schedule,
	}
}

func (j *SessionCleanupJob) Name() string {
	return "StaleSessionSweep"
}

func (j *SessionCleanupJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *SessionCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	swept, err := j.sessions.DeactivateStale(ctx, j.idleFor)
	if err != nil {
		return log.Err("failed to sweep stale sessions", err)
	}

	if swept > 0 {
		log.Info("Deactivated stale sessions", "count", swept, "idleFor", j.idleFor)
	}

	return nil
}
