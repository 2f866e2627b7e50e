package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for plan titles, city names and customer names.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCurrency upper-cases and trims an ISO 4217 currency code.
func NormalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
