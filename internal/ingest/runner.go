// Package ingest drives one end-to-end ingestion run: fetch every posting
// for a search query, persist it, then trim retention.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/hh"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/model"
)

// Source is the slice of the vacancy source the runner needs.
type Source interface {
	FetchAll(ctx context.Context, query string, opts hh.SearchOptions) []model.Posting
}

// Store is the slice of the persistence layer the runner needs. Store errors
// are the only fatal errors in the pipeline — they propagate out of Run.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertEmployer(ctx context.Context, e model.Employer) (int, error)
	InsertPosting(ctx context.Context, p model.Posting) error
	TrimToTopEmployers(ctx context.Context, limit int) (int, error)
	InvalidateAggregates(ctx context.Context)
}

// Runner executes ingestion runs. It holds no state between runs; repeated
// runs against the same store converge on the top-retention employer
// leaderboard rather than accumulating unbounded history.
type Runner struct {
	source    Source
	store     Store
	opts      hh.SearchOptions
	retention int // employer cap handed to the retention trim
}

// NewRunner constructs a Runner. retention must be positive.
func NewRunner(source Source, store Store, opts hh.SearchOptions, retention int) *Runner {
	return &Runner{source: source, store: store, opts: opts, retention: retention}
}

// Run ingests every posting matching query. An empty fetch (network down,
// zero results) is a normal outcome: it is reported and the store is left
// untouched, retention trim included.
func (r *Runner) Run(ctx context.Context, query string) error {
	if err := r.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	postings := r.source.FetchAll(ctx, query, r.opts)
	if len(postings) == 0 {
		log.Printf("[ingest] No postings fetched for %q — nothing to ingest", query)
		return nil
	}
	log.Printf("[ingest] Fetched %d posting(s) for %q — saving", len(postings), query)

	var inserted, skipped int
	for _, p := range postings {
		if p.EmployerID == 0 {
			log.Printf("[ingest] Posting %d skipped: missing employer id", p.ID)
			skipped++
			continue
		}

		if _, err := r.store.UpsertEmployer(ctx, p.Employer()); err != nil {
			return fmt.Errorf("save employer for posting %d: %w", p.ID, err)
		}

		p.SourceQuery = query
		if err := r.store.InsertPosting(ctx, p); err != nil {
			return fmt.Errorf("save posting %d: %w", p.ID, err)
		}
		inserted++
	}

	retained, err := r.store.TrimToTopEmployers(ctx, r.retention)
	if err != nil {
		return fmt.Errorf("retention trim: %w", err)
	}
	r.store.InvalidateAggregates(ctx)

	log.Printf("[ingest] Run complete — saved=%d skipped=%d employers retained=%d",
		inserted, skipped, retained)
	return nil
}
