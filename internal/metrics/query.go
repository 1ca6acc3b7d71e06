package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"OrcaBI/internal/config"
)

// Period selects how facts are bucketed in the time series.
type Period string

const (
	Daily   Period = "daily"
	Monthly Period = "monthly"
	Annual  Period = "annual"
	Custom  Period = "custom"
)

var (
	// ErrNoData is returned while no spreadsheet has been ingested. Callers
	// report it as a regular answer, not a failure.
	ErrNoData = errors.New("Dados não carregados. Faça upload do Excel primeiro.")

	ErrInvalidPeriod = errors.New("invalid period, expected daily, monthly, annual or custom")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
)

// Query describes one metrics request. Empty filter lists mean "no filter".
type Query struct {
	Period    Period
	StartDate string
	EndDate   string
	Suppliers []string
	Accounts  []string
	Markets   []string
}

// ParsePeriod maps the request value to a Period; blank means monthly.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = config.DefaultPeriod
	}
	switch p := Period(s); p {
	case Daily, Monthly, Annual, Custom:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// ParseList splits a comma-separated filter value, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the period and, when given, the date bounds.
func (q Query) Validate() error {
	if _, err := ParsePeriod(string(q.Period)); err != nil {
		return err
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(config.DateFormat, d); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	return nil
}

// hasRange reports whether the query restricts facts to a date window.
func (q Query) hasRange() bool {
	return q.Period == Custom && q.StartDate != "" && q.EndDate != ""
}

// inRange compares YYYY-MM-DD strings, which order like the dates they name.
func (q Query) inRange(date string) bool {
	return date >= q.StartDate && date <= q.EndDate
}

type stringSet map[string]bool

func newStringSet(items []string) stringSet {
	if len(items) == 0 {
		return nil
	}
	s := make(stringSet, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

// allows treats a nil set as "everything passes".
func (s stringSet) allows(v string) bool {
	return s == nil || s[v]
}
