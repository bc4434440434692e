package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultCleanupInterval is how often expired codes, locks and revocations are swept
const DefaultCleanupInterval = 5 * time.Minute

// CleanupTask is one housekeeping step. It reports how many rows or entries it removed.
type CleanupTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// CleanupWorker periodically clears expired verification codes, random passwords,
// login locks and in-memory token revocations
type CleanupWorker struct {
	tasks    []CleanupTask
	interval time.Duration
	log      *zap.Logger
}

// NewCleanupWorker creates a worker running tasks every interval
func NewCleanupWorker(interval time.Duration, log *zap.Logger, tasks ...CleanupTask) *CleanupWorker {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupWorker{tasks: tasks, interval: interval, log: log}
}

// AccountCleanupTasks builds the standard sweep over verification rows and login locks
func AccountCleanupTasks(verifications *VerificationService, users *UserService) []CleanupTask {
	return []CleanupTask{
		{Name: "expired_codes", Run: verifications.ClearExpired},
		{Name: "expired_locks", Run: users.UnlockExpired},
	}
}

// BlacklistCleanupTask drops expired entries from an in-memory blacklist
func BlacklistCleanupTask(b *InMemoryTokenBlacklist) CleanupTask {
	return CleanupTask{
		Name: "token_blacklist",
		Run: func(context.Context) (int64, error) {
			return int64(b.Cleanup()), nil
		},
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("cleanup worker started", zap.Duration("interval", w.interval), zap.Int("tasks", len(w.tasks)))
	w.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			w.log.Info("cleanup worker stopped")
			return
		}
	}
}

// RunOnce executes every task, logging failures without stopping the sweep
func (w *CleanupWorker) RunOnce(ctx context.Context) map[string]int64 {
	removed := make(map[string]int64, len(w.tasks))
	for _, task := range w.tasks {
		if ctx.Err() != nil {
			return removed
		}
		n, err := task.Run(ctx)
		if err != nil {
			w.log.Error("cleanup task failed", zap.String("task", task.Name), zap.Error(err))
			continue
		}
		removed[task.Name] = n
		if n > 0 {
			w.log.Debug("cleanup task removed entries", zap.String("task", task.Name), zap.Int64("removed", n))
		}
	}
	return removed
}
