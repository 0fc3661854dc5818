package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/facilite-dev/facilite/internal/tasks"
)

// StartSweepScheduler enqueues the pending-payment expiry sweep on the
// configured cron schedule. Checks every minute whether the next run is due.
func StartSweepScheduler(client *asynq.Client, schedule string, logger zerolog.Logger) {
	next := nextSweepTime(schedule, time.Now())
	if next == nil {
		logger.Warn().Str("schedule", schedule).Msg("No valid sweep schedule - expiry sweep disabled")
		return
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if time.Now().Before(*next) {
			continue
		}

		task, err := tasks.NewExpirePendingTask()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create expiry sweep task")
			continue
		}

		if _, err := client.Enqueue(task, asynq.Queue("low"), asynq.Timeout(5*time.Minute)); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue expiry sweep task")
			continue
		}

		next = nextSweepTime(schedule, time.Now())
		logger.Info().
			Time("next_sweep_at", *next).
			Msg("Expiry sweep enqueued")
	}
}

// nextSweepTime computes the next run from a standard 5-field cron expression
func nextSweepTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
