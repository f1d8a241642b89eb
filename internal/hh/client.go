// Package hh implements the hh.ru vacancy source: a paginated search client
// and the normalisation of raw search items into canonical postings.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/model"
)

const (
	defaultBaseURL = "https://api.hh.ru"
	maxPageSize    = 100 // hard cap imposed by the API itself
	areaRussia     = 113
	httpTimeout    = 15 * time.Second
)

// Source is the capability a job board must provide to feed the ingest
// pipeline. One implementation exists today (hh.ru); the Runner only ever
// talks to this interface, so adding another board does not touch it.
type Source interface {
	// Connect probes connectivity. It never returns an error: an unreachable
	// board simply means nothing to ingest this round.
	Connect(ctx context.Context) bool
	// FetchPage fetches and normalises a single result page.
	FetchPage(ctx context.Context, query string, opts SearchOptions, page int) ([]model.Posting, error)
	// FetchAll drives pagination internally and absorbs transport failures,
	// returning whatever was collected before the first bad page.
	FetchAll(ctx context.Context, query string, opts SearchOptions) []model.Posting
}

// SearchOptions narrows a vacancy search server-side.
type SearchOptions struct {
	Area           int  // region code; 0 means all of Russia (113)
	PerPage        int  // page size; 0 means the API maximum of 100
	OnlyWithSalary bool // restrict to postings with a disclosed salary
	MinimumSalary  int  // when set, implies OnlyWithSalary
}

// Client talks to the hh.ru public search API.
//
// PagePause and FetchPause keep the client under the API's rate limit: a
// pause between successive page requests and a shorter one after every
// successful fetch. Tests zero them out.
type Client struct {
	BaseURL    string
	PagePause  time.Duration
	FetchPause time.Duration

	client *http.Client
}

// NewClient constructs a Client. An empty baseURL selects the real API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		PagePause:  time.Second,
		FetchPause: 500 * time.Millisecond,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// searchResponse mirrors the top-level hh.ru search JSON.
type searchResponse struct {
	Items []rawVacancy `json:"items"`
	Found int          `json:"found"`
}

// rawVacancy mirrors a single hh.ru search item. Nested objects are pointers
// because the API omits them freely.
type rawVacancy struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AlternateURL string       `json:"alternate_url"`
	Employer     *rawEmployer `json:"employer"`
	Salary       *rawSalary   `json:"salary"`
	Experience   *rawNamed    `json:"experience"`
	Employment   *rawNamed    `json:"employment"`
	Schedule     *rawNamed    `json:"schedule"`
	Area         *rawNamed    `json:"area"`
	Description  string       `json:"description"`
	PublishedAt  string       `json:"published_at"`
}

type rawEmployer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
}

type rawSalary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
	Gross    *bool   `json:"gross"`
}

type rawNamed struct {
	Name string `json:"name"`
}

// Connect probes the API root. hh.ru filters obvious bots, so the probe (and
// every request) carries browser-like headers.
func (c *Client) Connect(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		log.Printf("[hh] Connectivity probe failed: %v", err)
		return false
	}
	setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[hh] Connectivity probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[hh] Connectivity probe returned %d", resp.StatusCode)
		return false
	}
	return true
}

// FetchPage fetches one result page and normalises every item on it.
func (c *Client) FetchPage(ctx context.Context, query string, opts SearchOptions, page int) ([]model.Posting, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("area", strconv.Itoa(area(opts)))
	params.Set("per_page", strconv.Itoa(perPage(opts)))
	params.Set("page", strconv.Itoa(page))
	params.Set("locale", "RU")
	params.Set("search_field", "name") // match on vacancy title only

	if opts.MinimumSalary > 0 {
		params.Set("salary", strconv.Itoa(opts.MinimumSalary))
		params.Set("only_with_salary", "true")
	} else if opts.OnlyWithSalary {
		params.Set("only_with_salary", "true")
	}

	reqURL := c.BaseURL + "/vacancies?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hh.ru returned %d: %s", resp.StatusCode, truncate(body, 500))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	postings := make([]model.Posting, 0, len(apiResp.Items))
	for _, raw := range apiResp.Items {
		postings = append(postings, normalizeVacancy(raw))
	}

	log.Printf("[hh] Page %d: got %d posting(s) for %q (total found: %d)",
		page, len(postings), query, apiResp.Found)
	return postings, nil
}

// FetchAll walks the paginated results for query, starting at page 0, until
// a short or empty page. A failed page ends the walk but keeps what was
// already collected — one bad page must never abort the whole ingestion.
func (c *Client) FetchAll(ctx context.Context, query string, opts SearchOptions) []model.Posting {
	if !c.Connect(ctx) {
		log.Printf("[hh] API unreachable — skipping fetch for %q", query)
		return nil
	}

	size := perPage(opts)
	var all []model.Posting

	for page := 0; ; page++ {
		if page > 0 {
			time.Sleep(c.PagePause)
		}

		batch, err := c.FetchPage(ctx, query, opts, page)
		if err != nil {
			log.Printf("[hh] Page %d failed: %v — returning %d posting(s) collected so far",
				page, err, len(all))
			break
		}
		if len(batch) == 0 {
			break
		}

		all = append(all, batch...)
		time.Sleep(c.FetchPause)

		if len(batch) < size {
			break // short page signals the end
		}
	}

	return all
}

func area(opts SearchOptions) int {
	if opts.Area > 0 {
		return opts.Area
	}
	return areaRussia
}

func perPage(opts SearchOptions) int {
	if opts.PerPage <= 0 || opts.PerPage > maxPageSize {
		return maxPageSize
	}
	return opts.PerPage
}

// setHeaders makes requests look like a regular browser session; the API
// rejects anonymous clients with default Go user agents.
func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Referer", "https://hh.ru/")
	req.Header.Set("Origin", "https://hh.ru/")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
