package store

import (
	"fmt"
	"strings"
)

// SalaryNotSpecified is rendered for postings with no disclosed salary.
const SalaryNotSpecified = "salary not specified"

// FormatSalary renders a salary range for display: "from X to Y CUR",
// "from X CUR" or "to Y CUR" depending on which bounds exist. The currency
// code is dropped entirely (no placeholder) when absent.
func FormatSalary(from, to *int, currency *string) string {
	if from == nil && to == nil {
		return SalaryNotSpecified
	}

	var parts []string
	if from != nil {
		parts = append(parts, fmt.Sprintf("from %d", *from))
	}
	if to != nil {
		parts = append(parts, fmt.Sprintf("to %d", *to))
	}
	if currency != nil && *currency != "" {
		parts = append(parts, *currency)
	}
	return strings.Join(parts, " ")
}
