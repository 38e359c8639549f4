package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"PriceHistorian/internal/backfill"
	"PriceHistorian/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the backfill on a cron schedule in daemon mode.
type Scheduler struct {
	Cron       *cron.Cron
	Reconciler *backfill.Reconciler
	Notifier   *notifier.TelegramNotifier
	Ctx        context.Context

	mu sync.Mutex // serializes runs; an overlapping tick is skipped
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, rec *backfill.Reconciler, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Reconciler: rec,
		Notifier:   tn,
		Ctx:        ctx,
	}
}

// Register registers the daily backfill task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the backfill task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	if !s.mu.TryLock() {
		log.Println("[WARN] previous run still in progress, skipping this tick")
		return
	}
	defer s.mu.Unlock()

	log.Println("[INFO] running daily backfill")
	res, err := s.Reconciler.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] daily backfill: %v", err)
		s.trySend(fmt.Sprintf("❌ PriceHistorian run failed: %v", err))
		return
	}
	if res.Failed() {
		log.Printf("[ERROR] run %s aborted on transport failure: %v", res.RunID, res.AbortErr)
	}
	s.trySend(notifier.FormatRunReport(res))
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
