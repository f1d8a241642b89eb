// Package store owns the persisted vacancy state: schema, the per-entity
// conflict policies, retention trimming and the aggregate read queries.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/model"
)

// Store wraps the Postgres pool and the optional Redis aggregate cache.
// Every method opens its own transaction scope; no transaction spans an
// ingestion run, so a crash mid-run keeps already-committed postings.
type Store struct {
	pool *pgxpool.Pool
	rdb  *redis.Client // nil disables the aggregate cache
}

// New returns a Store. rdb may be nil.
func New(pool *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{pool: pool, rdb: rdb}
}

// EmployerPostings is one row of the top-employers aggregate.
type EmployerPostings struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	PostingCount int    `json:"postingCount"`
}

// PostingSummary is one row of the posting listings, salary pre-formatted.
type PostingSummary struct {
	EmployerName string
	Title        string
	URL          string
	Salary       string
}

// repSalary computes the representative salary value of a posting: the mean
// of both bounds when present, otherwise whichever bound exists, otherwise
// NULL (which drops the posting from averages and comparisons).
const repSalary = `CASE
	WHEN salary_from IS NOT NULL AND salary_to IS NOT NULL THEN (salary_from + salary_to) / 2.0
	WHEN salary_from IS NOT NULL THEN salary_from::float8
	ELSE salary_to::float8
END`

// EnsureSchema idempotently creates both tables and the two indexes backing
// the aggregate queries. Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ensureSchema begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS employers (
			id INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			url VARCHAR(255)
		)`,
		`CREATE TABLE IF NOT EXISTS postings (
			id INTEGER PRIMARY KEY,
			employer_id INTEGER NOT NULL REFERENCES employers(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			url VARCHAR(255),
			salary_from INTEGER,
			salary_to INTEGER,
			salary_currency VARCHAR(10),
			salary_gross BOOLEAN,
			experience VARCHAR(50),
			employment VARCHAR(50),
			schedule VARCHAR(50),
			description TEXT,
			area VARCHAR(100),
			published_at TIMESTAMP,
			source_query VARCHAR(255)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_employer_id ON postings (employer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_published_at ON postings (published_at)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensureSchema: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// UpsertEmployer inserts the employer or refreshes name/url on conflict.
// Re-ingestion always reflects the latest employer data — deliberately the
// opposite policy of InsertPosting. Returns the (externally supplied) id.
func (s *Store) UpsertEmployer(ctx context.Context, e model.Employer) (int, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO employers (id, name, url) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, url = EXCLUDED.url`,
		e.ID, e.Name, e.URL,
	)
	if err != nil {
		return 0, fmt.Errorf("upsertEmployer %d: %w", e.ID, err)
	}
	return e.ID, nil
}

// InsertPosting inserts the posting, silently skipping a duplicate id.
// First write wins: a posting is a snapshot at first ingestion time and is
// never refreshed.
func (s *Store) InsertPosting(ctx context.Context, p model.Posting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO postings (
			id, employer_id, title, url,
			salary_from, salary_to, salary_currency, salary_gross,
			experience, employment, schedule, description, area,
			published_at, source_query
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, '')::timestamp, $15)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.EmployerID, p.Title, p.URL,
		p.SalaryFrom, p.SalaryTo, p.SalaryCurrency, p.SalaryGross,
		p.Experience, p.Employment, p.Schedule, p.Description, p.Area,
		p.PublishedAt, p.SourceQuery,
	)
	if err != nil {
		return fmt.Errorf("insertPosting %d: %w", p.ID, err)
	}
	return nil
}

// TopEmployersByPostingCount returns up to limit employers ordered by how
// many postings they have, zero-posting employers included.
func (s *Store) TopEmployersByPostingCount(ctx context.Context, limit int) ([]EmployerPostings, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.name, COALESCE(e.url, ''), COUNT(p.id) AS posting_count
		 FROM employers e
		 LEFT JOIN postings p ON p.employer_id = e.id
		 GROUP BY e.id, e.name, e.url
		 ORDER BY posting_count DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("topEmployers query: %w", err)
	}
	defer rows.Close()

	var top []EmployerPostings
	for rows.Next() {
		var e EmployerPostings
		if err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.PostingCount); err != nil {
			return nil, fmt.Errorf("topEmployers scan: %w", err)
		}
		top = append(top, e)
	}
	return top, rows.Err()
}

// TrimToTopEmployers keeps only the top-limit employers by posting count and
// deletes everything else (postings first, then employers — though the
// cascade would handle the former anyway). With no employers at all it is a
// no-op reporting zero retained. Fewer than limit employers means all are
// retained. Assumes exclusive write access for its duration.
func (s *Store) TrimToTopEmployers(ctx context.Context, limit int) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("trim begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT e.id
		 FROM employers e
		 LEFT JOIN postings p ON p.employer_id = e.id
		 GROUP BY e.id
		 ORDER BY COUNT(p.id) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return 0, fmt.Errorf("trim select top: %w", err)
	}
	var keep []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("trim scan: %w", err)
		}
		keep = append(keep, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("trim rows: %w", err)
	}

	if len(keep) == 0 {
		return 0, nil
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM postings WHERE NOT (employer_id = ANY($1))`, keep,
	); err != nil {
		return 0, fmt.Errorf("trim delete postings: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM employers WHERE NOT (id = ANY($1))`, keep,
	); err != nil {
		return 0, fmt.Errorf("trim delete employers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("trim commit: %w", err)
	}
	return len(keep), nil
}

// EmployerPostingCounts returns every employer with its posting count,
// ordered by count descending. Served from the aggregate cache when warm.
func (s *Store) EmployerPostingCounts(ctx context.Context) ([]EmployerPostings, error) {
	if counts, ok := s.cachedEmployerCounts(ctx); ok {
		return counts, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.name, COALESCE(e.url, ''), COUNT(p.id) AS posting_count
		 FROM employers e
		 LEFT JOIN postings p ON p.employer_id = e.id
		 GROUP BY e.id, e.name, e.url
		 ORDER BY posting_count DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("employerPostingCounts query: %w", err)
	}
	defer rows.Close()

	var counts []EmployerPostings
	for rows.Next() {
		var e EmployerPostings
		if err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.PostingCount); err != nil {
			return nil, fmt.Errorf("employerPostingCounts scan: %w", err)
		}
		counts = append(counts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.storeEmployerCounts(ctx, counts)
	return counts, nil
}

// AllPostings lists every posting with its employer and formatted salary,
// ordered by employer name.
func (s *Store) AllPostings(ctx context.Context) ([]PostingSummary, error) {
	return s.queryPostingSummaries(ctx,
		`SELECT e.name, p.title, COALESCE(p.url, ''), p.salary_from, p.salary_to, p.salary_currency
		 FROM postings p
		 JOIN employers e ON e.id = p.employer_id
		 ORDER BY e.name`,
	)
}

// AverageSalary averages the representative salary value over all postings
// that disclose at least one bound. Returns 0 when none qualify.
func (s *Store) AverageSalary(ctx context.Context) (float64, error) {
	if avg, ok := s.cachedAverageSalary(ctx); ok {
		return avg, nil
	}

	var avg float64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(`+repSalary+`), 0) FROM postings`,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averageSalary: %w", err)
	}

	s.storeAverageSalary(ctx, avg)
	return avg, nil
}

// PostingsAboveAverageSalary lists postings whose representative salary value
// exceeds the current average, highest first. An average of 0 means no
// posting disclosed a salary, so the result is empty by definition.
func (s *Store) PostingsAboveAverageSalary(ctx context.Context) ([]PostingSummary, error) {
	avg, err := s.AverageSalary(ctx)
	if err != nil {
		return nil, err
	}
	if avg == 0 {
		return []PostingSummary{}, nil
	}

	return s.queryPostingSummaries(ctx,
		`SELECT e.name, p.title, COALESCE(p.url, ''), p.salary_from, p.salary_to, p.salary_currency
		 FROM postings p
		 JOIN employers e ON e.id = p.employer_id
		 WHERE `+repSalary+` > $1
		 ORDER BY `+repSalary+` DESC`,
		avg,
	)
}

// PostingsMatchingKeyword lists postings whose title contains keyword
// (case-insensitive), ordered by title.
func (s *Store) PostingsMatchingKeyword(ctx context.Context, keyword string) ([]PostingSummary, error) {
	return s.queryPostingSummaries(ctx,
		`SELECT e.name, p.title, COALESCE(p.url, ''), p.salary_from, p.salary_to, p.salary_currency
		 FROM postings p
		 JOIN employers e ON e.id = p.employer_id
		 WHERE p.title ILIKE '%' || $1 || '%'
		 ORDER BY p.title ASC`,
		keyword,
	)
}

func (s *Store) queryPostingSummaries(ctx context.Context, sql string, args ...any) ([]PostingSummary, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("posting summaries query: %w", err)
	}
	defer rows.Close()

	var out []PostingSummary
	for rows.Next() {
		var (
			ps       PostingSummary
			from, to *int
			currency *string
		)
		if err := rows.Scan(&ps.EmployerName, &ps.Title, &ps.URL, &from, &to, &currency); err != nil {
			return nil, fmt.Errorf("posting summaries scan: %w", err)
		}
		ps.Salary = FormatSalary(from, to, currency)
		out = append(out, ps)
	}
	return out, rows.Err()
}
