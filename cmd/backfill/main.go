package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PriceHistorian/internal/backfill"
	"PriceHistorian/internal/config"
	"PriceHistorian/internal/notifier"
	"PriceHistorian/internal/recorder"
	"PriceHistorian/internal/scheduler"
	"PriceHistorian/internal/source"
	"PriceHistorian/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PriceHistorian starting...")

	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	daemon := flag.Bool("daemon", false, "keep running and backfill on the configured cron schedule")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store and source
	st := store.NewStore(cfg.Store.CSVPath, cfg.Store.JSONPath)
	src := source.NewCryptoCompareSource(cfg.DataSource.BaseURL, cfg.DataSource.FSym,
		cfg.DataSource.TSym, cfg.DataSource.APIKey, cfg.Proxy)
	log.Printf("[INFO] data source: %s (%s/%s)", src.Name(), cfg.DataSource.FSym, cfg.DataSource.TSym)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	rc := backfill.NewReconciler(st, src, rec, cfg.BaselineDay())
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !*daemon {
		runOnce(ctx, rc, tn)
		return
	}

	// Daemon mode: backfill on the configured schedule until signalled.
	sched := scheduler.NewScheduler(ctx, rc, tn)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing backfill now")
		go sched.RunNow()
	}

	log.Println("[INFO] PriceHistorian is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] PriceHistorian stopped")
}

// runOnce executes a single reconciliation pass and exits non-zero on any
// fatal error or on a transport-aborted run.
func runOnce(ctx context.Context, rc *backfill.Reconciler, tn *notifier.TelegramNotifier) {
	res, err := rc.Run(ctx)
	if err != nil {
		log.Fatalf("[FATAL] backfill: %v", err)
	}
	if tn.Enabled() {
		if err := tn.SendWithRetry(ctx, notifier.FormatRunReport(res), 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}
	if res.Failed() {
		log.Printf("[ERROR] run %s aborted on transport failure: %v", res.RunID, res.AbortErr)
		os.Exit(1)
	}
	log.Println("[INFO] run finished successfully")
}
