// Package model defines the shared data structures for the vacancy loader.
package model

// Employer is a hiring organisation as stored in the employers table.
// The ID is the external hh.ru identifier — never generated locally.
type Employer struct {
	ID   int
	Name string
	URL  string
}

// Posting is one job vacancy snapshot, normalised from a raw hh.ru search
// item. Salary fields are pointers because the API omits the whole salary
// object for undisclosed compensation — absent is not zero.
type Posting struct {
	ID             int
	EmployerID     int
	EmployerName   string
	EmployerURL    string
	Title          string
	URL            string
	SalaryFrom     *int
	SalaryTo       *int
	SalaryCurrency *string
	SalaryGross    *bool
	Experience     string
	Employment     string
	Schedule       string
	Description    string
	Area           string
	PublishedAt    string // canonical "2006-01-02 15:04:05", empty when unknown
	SourceQuery    string // search string that produced this record, set by the ingest runner
}

// Employer extracts the employer row referenced by the posting.
func (p Posting) Employer() Employer {
	return Employer{ID: p.EmployerID, Name: p.EmployerName, URL: p.EmployerURL}
}
