// Package filter decides which discovered postings are worth an attempt.
package filter

import "strings"

// IsBlocked returns true if any blocked fragment appears (case-insensitive)
// in the company name. Fragments are trimmed; empty ones never match.
func IsBlocked(company string, blocked []string) bool {
	if len(blocked) == 0 {
		return false
	}
	c := strings.ToLower(company)
	for _, frag := range blocked {
		frag = strings.ToLower(strings.TrimSpace(frag))
		if frag == "" {
			continue
		}
		if strings.Contains(c, frag) {
			return true
		}
	}
	return false
}
