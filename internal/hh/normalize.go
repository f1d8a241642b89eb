package hh

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Aleksandr-AAS/Third-kursovoy-SAA/internal/model"
)

// canonicalTime is the timestamp layout stored in the database.
const canonicalTime = "2006-01-02 15:04:05"

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// CleanHTML strips markup tags, decodes the handful of HTML entities hh.ru
// actually emits in descriptions, and collapses whitespace runs.
func CleanHTML(text string) string {
	if text == "" {
		return ""
	}
	clean := tagPattern.ReplaceAllString(text, "")
	clean = entityReplacer.Replace(clean)
	return strings.Join(strings.Fields(clean), " ")
}

// NormalizeTimestamp parses an ISO-8601 publish timestamp and reformats it as
// "2006-01-02 15:04:05". hh.ru sends offsets without a colon ("+0300"), which
// RFC 3339 rejects, so that layout is tried second. Unparseable input yields
// an empty string — a bad timestamp must not sink the whole record.
func NormalizeTimestamp(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05-0700", s)
	}
	if err != nil {
		return ""
	}
	return t.Format(canonicalTime)
}

// normalizeVacancy converts one raw search item into the canonical posting
// shape. Missing nested objects default to zero values — normalisation never
// fails. SourceQuery is left empty: only the caller knows which query
// produced the page.
func normalizeVacancy(raw rawVacancy) model.Posting {
	p := model.Posting{
		Title:       raw.Name,
		URL:         raw.AlternateURL,
		Description: CleanHTML(raw.Description),
		PublishedAt: NormalizeTimestamp(raw.PublishedAt),
	}
	p.ID, _ = strconv.Atoi(raw.ID)

	if raw.Employer != nil {
		p.EmployerID, _ = strconv.Atoi(raw.Employer.ID)
		p.EmployerName = raw.Employer.Name
		p.EmployerURL = raw.Employer.AlternateURL
	}
	if raw.Salary != nil {
		p.SalaryFrom = raw.Salary.From
		p.SalaryTo = raw.Salary.To
		p.SalaryCurrency = raw.Salary.Currency
		p.SalaryGross = raw.Salary.Gross
	}
	if raw.Experience != nil {
		p.Experience = raw.Experience.Name
	}
	if raw.Employment != nil {
		p.Employment = raw.Employment.Name
	}
	if raw.Schedule != nil {
		p.Schedule = raw.Schedule.Name
	}
	if raw.Area != nil {
		p.Area = raw.Area.Name
	}

	return p
}
