package annexc

import (
	"fmt"
	"time"
)

// TaxPeriod is one calendar month of the statutory return, e.g. "2026-02".
type TaxPeriod struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses the YYYY-MM form used by the reporting API.
func ParsePeriod(s string) (TaxPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return TaxPeriod{}, fmt.Errorf("invalid tax period %q: %w", s, err)
	}
	return TaxPeriod{Year: t.Year(), Month: t.Month()}, nil
}

// Contains reports whether the date falls inside the period's month.
func (p TaxPeriod) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// String renders the period back to YYYY-MM.
func (p TaxPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
