package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/model"
	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/store"
)

// These tests need a throwaway Postgres database. Point TEST_DATABASE_URL at
// one to run them; they are skipped otherwise.
func testStore(t *testing.T) *store.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	s := store.New(pool, nil)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := pool.Exec(context.Background(), `TRUNCATE postings, employers`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func posting(id, employerID int, title string, from, to *int) model.Posting {
	return model.Posting{
		ID:         id,
		EmployerID: employerID,
		Title:      title,
		SalaryFrom: from,
		SalaryTo:   to,
	}
}

func mustUpsertEmployer(t *testing.T, s *store.Store, e model.Employer) {
	t.Helper()
	if _, err := s.UpsertEmployer(context.Background(), e); err != nil {
		t.Fatalf("UpsertEmployer(%d): %v", e.ID, err)
	}
}

func mustInsertPosting(t *testing.T, s *store.Store, p model.Posting) {
	t.Helper()
	if err := s.InsertPosting(context.Background(), p); err != nil {
		t.Fatalf("InsertPosting(%d): %v", p.ID, err)
	}
}

// ── Conflict policies ──────────────────────────────────────────────────────

func TestUpsertEmployer_LatestValuesWin(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Old Name", URL: "https://old"})
	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "New Name", URL: "https://new"})

	counts, err := s.EmployerPostingCounts(ctx)
	if err != nil {
		t.Fatalf("EmployerPostingCounts: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("got %d employers, want 1 — re-ingesting the same id must not duplicate", len(counts))
	}
	if counts[0].Name != "New Name" || counts[0].URL != "https://new" {
		t.Errorf("stored employer = (%q, %q), want the latest values", counts[0].Name, counts[0].URL)
	}
	if counts[0].PostingCount != 0 {
		t.Errorf("posting count = %d, want 0 — zero-posting employers are still listed", counts[0].PostingCount)
	}
}

func TestInsertPosting_FirstWriteWins(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Acme"})
	mustInsertPosting(t, s, posting(10, 1, "First Title", nil, nil))
	mustInsertPosting(t, s, posting(10, 1, "Second Title", nil, nil))

	all, err := s.AllPostings(ctx)
	if err != nil {
		t.Fatalf("AllPostings: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d postings, want 1", len(all))
	}
	if all[0].Title != "First Title" {
		t.Errorf("title = %q, want the first insert to win", all[0].Title)
	}
}

// ── Aggregates ─────────────────────────────────────────────────────────────

func TestAverageSalary_ExcludesUndisclosed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Acme"})
	mustInsertPosting(t, s, posting(1, 1, "Both bounds", intp(100), intp(200)))
	mustInsertPosting(t, s, posting(2, 1, "Lower bound", intp(50), nil))
	mustInsertPosting(t, s, posting(3, 1, "Undisclosed", nil, nil))

	avg, err := s.AverageSalary(ctx)
	if err != nil {
		t.Fatalf("AverageSalary: %v", err)
	}
	// mean of (150, 50); the undisclosed posting is excluded, not counted as 0
	if avg != 100.0 {
		t.Errorf("AverageSalary = %v, want 100.0", avg)
	}
}

func TestAverageSalary_EmptyStoreIsZero(t *testing.T) {
	s := testStore(t)

	avg, err := s.AverageSalary(context.Background())
	if err != nil {
		t.Fatalf("AverageSalary: %v", err)
	}
	if avg != 0 {
		t.Errorf("AverageSalary = %v, want 0", avg)
	}
}

func TestPostingsAboveAverageSalary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Acme"})
	mustInsertPosting(t, s, posting(1, 1, "High", intp(300), intp(300)))
	mustInsertPosting(t, s, posting(2, 1, "Low", intp(100), intp(100)))
	mustInsertPosting(t, s, posting(3, 1, "Undisclosed", nil, nil))

	above, err := s.PostingsAboveAverageSalary(ctx)
	if err != nil {
		t.Fatalf("PostingsAboveAverageSalary: %v", err)
	}
	if len(above) != 1 || above[0].Title != "High" {
		t.Errorf("above-average = %+v, want only the High posting (average is 200)", above)
	}
}

func TestPostingsMatchingKeyword_CaseInsensitive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Acme"})
	mustInsertPosting(t, s, posting(1, 1, "Senior Python Developer", nil, nil))
	mustInsertPosting(t, s, posting(2, 1, "Go Developer", nil, nil))

	found, err := s.PostingsMatchingKeyword(ctx, "python")
	if err != nil {
		t.Fatalf("PostingsMatchingKeyword: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Senior Python Developer" {
		t.Errorf("keyword match = %+v, want the Python posting only", found)
	}
}

// ── Retention trim ─────────────────────────────────────────────────────────

func TestTrimToTopEmployers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "A"})
	mustUpsertEmployer(t, s, model.Employer{ID: 2, Name: "B"})
	mustUpsertEmployer(t, s, model.Employer{ID: 3, Name: "C"})
	id := 0
	for employer, n := range map[int]int{1: 3, 2: 1, 3: 5} {
		for i := 0; i < n; i++ {
			id++
			mustInsertPosting(t, s, posting(id, employer, "p", nil, nil))
		}
	}

	retained, err := s.TrimToTopEmployers(ctx, 2)
	if err != nil {
		t.Fatalf("TrimToTopEmployers: %v", err)
	}
	if retained != 2 {
		t.Errorf("retained = %d, want 2", retained)
	}

	counts, err := s.EmployerPostingCounts(ctx)
	if err != nil {
		t.Fatalf("EmployerPostingCounts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d employers after trim, want exactly 2", len(counts))
	}
	if counts[0].Name != "C" || counts[0].PostingCount != 5 {
		t.Errorf("top employer = %+v, want C with 5 postings", counts[0])
	}
	if counts[1].Name != "A" || counts[1].PostingCount != 3 {
		t.Errorf("second employer = %+v, want A with 3 postings", counts[1])
	}
}

func TestTrimToTopEmployers_EmptyStoreIsNoOp(t *testing.T) {
	s := testStore(t)

	retained, err := s.TrimToTopEmployers(context.Background(), 10)
	if err != nil {
		t.Fatalf("TrimToTopEmployers: %v", err)
	}
	if retained != 0 {
		t.Errorf("retained = %d, want 0", retained)
	}
}

func TestTrimToTopEmployers_FewerThanLimitRetainsAll(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustUpsertEmployer(t, s, model.Employer{ID: 1, Name: "Only"})

	retained, err := s.TrimToTopEmployers(ctx, 10)
	if err != nil {
		t.Fatalf("TrimToTopEmployers: %v", err)
	}
	if retained != 1 {
		t.Errorf("retained = %d, want 1 — fewer employers than the cap keeps them all", retained)
	}
}
