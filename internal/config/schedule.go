package config

import (
	"time"

	"github.com/stemsi/absence-emailer/internal/model"
)

// Schedule describes which periods meet on which weekdays.
// Treat it as read-only; accessors hand out copies.
type Schedule struct {
	ADays []time.Weekday
	BDays []time.Weekday
	// AmbiguousDays can be either an A-day or a B-day and carry advisory.
	AmbiguousDays []time.Weekday

	APeriods         []model.PeriodCode
	BPeriods         []model.PeriodCode
	AdvisoryAPeriods []model.PeriodCode
	AdvisoryBPeriods []model.PeriodCode
}

// DefaultSchedule is the block schedule the roster export is built for.
func DefaultSchedule() Schedule {
	return Schedule{
		ADays:         []time.Weekday{time.Monday, time.Wednesday},
		BDays:         []time.Weekday{time.Tuesday, time.Thursday},
		AmbiguousDays: []time.Weekday{time.Friday},

		APeriods: []model.PeriodCode{model.Period1, model.Period2, model.Period3, model.Period4},
		BPeriods: []model.PeriodCode{model.Period5, model.Period6, model.Period7, model.Period8},
		AdvisoryAPeriods: []model.PeriodCode{
			model.Period1, model.PeriodAdvisory, model.Period2, model.Period3, model.Period4,
		},
		AdvisoryBPeriods: []model.PeriodCode{
			model.Period5, model.PeriodAdvisory, model.Period6, model.Period7, model.Period8,
		},
	}
}

// IsAmbiguous reports whether day needs an A/B answer from the operator.
func (s Schedule) IsAmbiguous(day time.Weekday) bool {
	return containsDay(s.AmbiguousDays, day)
}

// HasClasses reports whether any periods meet on day.
func (s Schedule) HasClasses(day time.Weekday) bool {
	return containsDay(s.ADays, day) || containsDay(s.BDays, day) || s.IsAmbiguous(day)
}

// Periods returns the period sequence for day. dayType is only consulted on
// ambiguous days. The second result is false when no classes meet on day.
func (s Schedule) Periods(day time.Weekday, dayType model.DayType) ([]model.PeriodCode, bool) {
	var seq []model.PeriodCode
	switch {
	case s.IsAmbiguous(day):
		if dayType == model.DayB {
			seq = s.AdvisoryBPeriods
		} else {
			seq = s.AdvisoryAPeriods
		}
	case containsDay(s.ADays, day):
		seq = s.APeriods
	case containsDay(s.BDays, day):
		seq = s.BPeriods
	default:
		return nil, false
	}
	return append([]model.PeriodCode(nil), seq...), true
}

func containsDay(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
