// Package menu renders the interactive text menu over the store's read-side
// aggregate queries. Each numbered action maps 1:1 to one store operation.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/store"
)

// Reads is the read-side slice of the store the menu consumes.
type Reads interface {
	EmployerPostingCounts(ctx context.Context) ([]store.EmployerPostings, error)
	AllPostings(ctx context.Context) ([]store.PostingSummary, error)
	AverageSalary(ctx context.Context) (float64, error)
	PostingsAboveAverageSalary(ctx context.Context) ([]store.PostingSummary, error)
	PostingsMatchingKeyword(ctx context.Context, keyword string) ([]store.PostingSummary, error)
}

// Menu drives the interactive loop.
type Menu struct {
	store Reads
	in    *bufio.Scanner
	out   io.Writer
}

// New constructs a Menu reading choices from in and printing to out.
func New(s Reads, in io.Reader, out io.Writer) *Menu {
	return &Menu{store: s, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks exit or input ends. Store errors abort the
// loop — they are fatal per the pipeline's error taxonomy.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out, "\n"+strings.Repeat("=", 50))
		fmt.Fprintln(m.out, "MENU:")
		fmt.Fprintln(m.out, "1. Employers and posting counts")
		fmt.Fprintln(m.out, "2. All postings")
		fmt.Fprintln(m.out, "3. Average salary")
		fmt.Fprintln(m.out, "4. Postings above average salary")
		fmt.Fprintln(m.out, "5. Search postings by keyword")
		fmt.Fprintln(m.out, "0. Exit")
		fmt.Fprint(m.out, "Choose an action: ")

		if !m.in.Scan() {
			return m.in.Err()
		}
		choice := strings.TrimSpace(m.in.Text())

		var err error
		switch choice {
		case "1":
			err = m.showEmployerCounts(ctx)
		case "2":
			err = m.showAllPostings(ctx)
		case "3":
			err = m.showAverageSalary(ctx)
		case "4":
			err = m.showAboveAverage(ctx)
		case "5":
			err = m.searchByKeyword(ctx)
		case "0":
			fmt.Fprintln(m.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) showEmployerCounts(ctx context.Context) error {
	counts, err := m.store.EmployerPostingCounts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Fprintln(m.out, "No employer data.")
		return nil
	}
	fmt.Fprintln(m.out, "\n--- Employers and posting counts ---")
	for i, c := range counts {
		fmt.Fprintf(m.out, "%d. %s — %d posting(s)\n", i+1, c.Name, c.PostingCount)
	}
	return nil
}

func (m *Menu) showAllPostings(ctx context.Context) error {
	postings, err := m.store.AllPostings(ctx)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		fmt.Fprintln(m.out, "No postings.")
		return nil
	}
	fmt.Fprintln(m.out, "\n--- All postings ---")
	for i, p := range postings {
		fmt.Fprintf(m.out, "%d. %s | %s | %s | %s\n", i+1, p.EmployerName, p.Title, p.Salary, p.URL)
	}
	return nil
}

func (m *Menu) showAverageSalary(ctx context.Context) error {
	avg, err := m.store.AverageSalary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nAverage salary across all postings: %.2f\n", avg)
	return nil
}

func (m *Menu) showAboveAverage(ctx context.Context) error {
	postings, err := m.store.PostingsAboveAverageSalary(ctx)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		fmt.Fprintln(m.out, "No postings above average salary.")
		return nil
	}
	fmt.Fprintln(m.out, "\n--- Postings above average salary ---")
	for i, p := range postings {
		fmt.Fprintf(m.out, "%d. %s | %s | %s\n", i+1, p.EmployerName, p.Title, p.Salary)
	}
	return nil
}

func (m *Menu) searchByKeyword(ctx context.Context) error {
	fmt.Fprint(m.out, "Enter a keyword: ")
	if !m.in.Scan() {
		return m.in.Err()
	}
	keyword := strings.TrimSpace(m.in.Text())
	if keyword == "" {
		fmt.Fprintln(m.out, "Keyword cannot be empty.")
		return nil
	}

	postings, err := m.store.PostingsMatchingKeyword(ctx, keyword)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		fmt.Fprintf(m.out, "No postings matching %q.\n", keyword)
		return nil
	}
	fmt.Fprintf(m.out, "\n--- Postings matching %q ---\n", keyword)
	for i, p := range postings {
		fmt.Fprintf(m.out, "%d. %s | %s | %s | %s\n", i+1, p.EmployerName, p.Title, p.Salary, p.URL)
	}
	return nil
}
