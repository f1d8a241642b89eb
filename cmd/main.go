// hh vacancy loader — ingests job postings from the hh.ru search API into
// Postgres and offers aggregate views over them through an interactive menu.
//
// Default mode runs one ingestion for SEARCH_QUERY and drops into the menu.
// With INGEST_INTERVAL_HOURS > 0 it instead re-ingests on a cron interval
// until interrupted (no menu — retention trimming assumes a single writer).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/config"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/db"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/hh"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/ingest"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/menu"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/scheduler"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config error: %v", err)
	}

	if err := db.EnsureDatabase(ctx, cfg.AdminDatabaseURL(), cfg.DBName); err != nil {
		log.Fatalf("[main] Database bootstrap failed: %v", err)
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("[main] Postgres connection failed: %v", err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[main] Redis unavailable (%v) — aggregate cache disabled", err)
			rdb = nil
		}
	}

	st := store.New(pool, rdb)
	runner := ingest.NewRunner(hh.NewClient(""), st, hh.SearchOptions{}, cfg.EmployerRetention)

	if cfg.IngestIntervalHours > 0 {
		sched := scheduler.New(runner, cfg.SearchQuery, cfg.IngestIntervalHours)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[main] Scheduler failed to start: %v", err)
		}
		<-ctx.Done()
		sched.Stop()
		return
	}

	if err := runner.Run(ctx, cfg.SearchQuery); err != nil {
		log.Fatalf("[main] Ingestion failed: %v", err)
	}

	if err := menu.New(st, os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatalf("[main] Menu error: %v", err)
	}
}
