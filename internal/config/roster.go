package config

import (
	"strings"

	"github.com/stemsi/absence-emailer/internal/model"
)

// PeriodPrefix maps a raw roster period code prefix to its canonical code.
type PeriodPrefix struct {
	Prefix string
	Code   model.PeriodCode
}

// RosterRules holds the filters and mappings applied to roster rows.
type RosterRules struct {
	// IgnorePeriods are administrative period code prefixes.
	IgnorePeriods []string
	// IgnorePeriodTypes are period type prefixes such as off periods.
	IgnorePeriodTypes []string
	PeriodPrefixes    []PeriodPrefix
}

// DefaultRosterRules matches the district's schedule export.
func DefaultRosterRules() RosterRules {
	return RosterRules{
		IgnorePeriods:     []string{"A-AFA", "A-AFB", "A-BFA", "B-AFB", "B-BFB"},
		IgnorePeriodTypes: []string{"OFF PERIOD", "OFFICE AIDE"},
		PeriodPrefixes: []PeriodPrefix{
			{"A-01", model.Period1},
			{"A-02", model.Period2},
			{"A-03", model.Period3},
			{"A-04", model.Period4},
			{"B-05", model.Period5},
			{"B-06", model.Period6},
			{"B-07", model.Period7},
			{"B-08", model.Period8},
			{"A-ADV", model.PeriodAdvisory},
		},
	}
}

// IgnorePeriod reports whether a raw period code is administrative.
func (r RosterRules) IgnorePeriod(raw string) bool {
	return hasAnyPrefix(raw, r.IgnorePeriods)
}

// IgnorePeriodType reports whether a period type is excluded.
func (r RosterRules) IgnorePeriodType(raw string) bool {
	return hasAnyPrefix(raw, r.IgnorePeriodTypes)
}

// Canonical maps a raw period code to its canonical code, or PeriodUnknown.
func (r RosterRules) Canonical(raw string) model.PeriodCode {
	for _, p := range r.PeriodPrefixes {
		if strings.HasPrefix(raw, p.Prefix) {
			return p.Code
		}
	}
	return model.PeriodUnknown
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
