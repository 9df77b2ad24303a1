package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/apply-service/internal/filter"
)

func TestParseSalary(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"R$ 5.000,00", 5000, true},
		{"R$ 4.500", 4500, true},
		{"3500,50", 3500.5, true},
		{"$120,000", 120000, true},
		{"$85,000.50 a year", 85000.5, true},
		{"1.234.567", 1234567, true},
		{"$120k", 120000, true},
		{"R$ 7 000", 7000, true},
		{"competitive", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := filter.ParseSalary(tc.in)
		assert.Equal(t, tc.ok, ok, "ParseSalary(%q) ok", tc.in)
		assert.InDelta(t, tc.want, got, 0.001, "ParseSalary(%q)", tc.in)
	}
}

func TestFindSalary(t *testing.T) {
	got, ok := filter.FindSalary("Backend Engineer\nRemote · Full-time\nSalário: R$ 6.500,00 / mês\n3 vagas")
	assert.True(t, ok)
	assert.InDelta(t, 6500, got, 0.001)

	_, ok = filter.FindSalary("Backend Engineer with 5 years of Go")
	assert.False(t, ok, "numbers without a currency marker are not salaries")
}

func TestIsContractor(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"Contratação PJ · Remoto", true},
		{"Modelo: Pessoa Jurídica", true},
		{"Contractor role, 6 months", true},
		{"Freelance Go developer", true},
		{"CLT com benefícios", false},
		{"Experience with PJAX and jQuery", false},
		{"Full-time employee", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, filter.IsContractor(tc.body), tc.body)
	}
}
