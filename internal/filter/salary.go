package filter

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	salarySnippet = regexp.MustCompile(`(?i)(R\$|BRL|US\$|\$)\s*\d[\d.,\s]*[kK]?`)
	salaryNumber  = regexp.MustCompile(`\d+(?:[.,\s]\d{3})*(?:[.,]\d+)?\s*[kK]?`)

	contractorMarker = regexp.MustCompile(`(?i)\b(pj|pessoa jur[ií]dica|contractor|freelance|freelancer|b2b)\b`)
)

// IsContractor reports whether page text advertises a contractor (PJ)
// engagement rather than employment.
func IsContractor(body string) bool {
	return contractorMarker.MatchString(body)
}

// FindSalary parses the first currency-prefixed amount in page text.
func FindSalary(body string) (float64, bool) {
	m := salarySnippet.FindString(body)
	if m == "" {
		return 0, false
	}
	return ParseSalary(m)
}

// ParseSalary reads the first number in text. Both "5.000,00" and
// "5,000.00" read as 5000; a trailing k multiplies by 1000.
func ParseSalary(text string) (float64, bool) {
	m := strings.TrimSpace(salaryNumber.FindString(text))
	if m == "" {
		return 0, false
	}
	mult := 1.0
	if strings.HasSuffix(m, "k") || strings.HasSuffix(m, "K") {
		mult = 1000
		m = strings.TrimSpace(m[:len(m)-1])
	}
	m = strings.ReplaceAll(m, " ", "")

	lastDot, lastComma := strings.LastIndex(m, "."), strings.LastIndex(m, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec := max(lastDot, lastComma)
		m = stripSeparators(m[:dec]) + "." + m[dec+1:]
	case lastDot >= 0 || lastComma >= 0:
		sep := max(lastDot, lastComma)
		// A single separator followed by exactly three digits groups thousands.
		if strings.Count(m, string(m[sep])) > 1 || len(m)-sep-1 == 3 {
			m = stripSeparators(m)
		} else {
			m = stripSeparators(m[:sep]) + "." + m[sep+1:]
		}
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}
