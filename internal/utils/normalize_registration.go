package utils

import "strings"

// NormalizeRegistration brings a vehicle registration to a canonical form:
// no whitespace or hyphens, upper case.
func NormalizeRegistration(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
