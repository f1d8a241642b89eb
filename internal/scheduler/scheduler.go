// Package scheduler wires up the cron job that periodically re-runs
// ingestion in daemon mode.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/ingest"
)

// Scheduler wraps robfig/cron and manages the periodic ingestion loop.
// Daemon mode and the interactive menu are mutually exclusive, so the
// retention trim's single-writer assumption holds.
type Scheduler struct {
	cron   *cron.Cron
	runner *ingest.Runner
	query  string
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that re-ingests query every intervalHours hours.
func New(runner *ingest.Runner, query string, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner: runner,
		query:  query,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one ingestion
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runIngestion(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runIngestion(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runIngestion(ctx context.Context) {
	log.Printf("[scheduler] Ingestion cycle started for %q", s.query)
	if err := s.runner.Run(ctx, s.query); err != nil {
		log.Printf("[scheduler] Ingestion failed: %v", err)
		return
	}
	log.Println("[scheduler] Ingestion cycle complete")
}
