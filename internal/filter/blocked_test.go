package filter_test

import (
	"testing"

	"jobmate/apply-service/internal/filter"
)

func TestIsBlocked(t *testing.T) {
	cases := []struct {
		company string
		blocked []string
		want    bool
	}{
		{"Acme Corp", []string{"acme"}, true},
		{"ACME CORP", []string{"  Acme "}, true},
		{"Globex", []string{"acme", "initech"}, false},
		{"Initech Brasil", []string{"", "   ", "initech"}, true},
		{"Acme Corp", []string{"", "  "}, false},
		{"Acme Corp", nil, false},
		{"", []string{"acme"}, false},
	}
	for _, tc := range cases {
		if got := filter.IsBlocked(tc.company, tc.blocked); got != tc.want {
			t.Errorf("IsBlocked(%q, %q) = %v, want %v", tc.company, tc.blocked, got, tc.want)
		}
	}
}
