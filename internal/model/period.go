package model

import (
	"strings"
	"time"
)

// DateLayout is the mm/dd/yy form dates are keyed and displayed in.
const DateLayout = "01/02/06"

// PeriodCode is the canonical label of a class meeting slot.
type PeriodCode string

const (
	Period1        PeriodCode = "1"
	Period2        PeriodCode = "2"
	Period3        PeriodCode = "3"
	Period4        PeriodCode = "4"
	Period5        PeriodCode = "5"
	Period6        PeriodCode = "6"
	Period7        PeriodCode = "7"
	Period8        PeriodCode = "8"
	PeriodAdvisory PeriodCode = "Adv"
	// PeriodUnknown marks a roster period code that matched no prefix.
	PeriodUnknown PeriodCode = "???"
)

// ParsePeriodCode canonicalizes an operator-typed period ("adv" → "Adv").
func ParsePeriodCode(s string) PeriodCode {
	if strings.EqualFold(s, string(PeriodAdvisory)) {
		return PeriodAdvisory
	}
	return PeriodCode(s)
}

// Mark tells whether a student leaves or returns partway through a period.
type Mark string

const (
	MarkNone      Mark = ""
	MarkLeaving   Mark = "leaving"
	MarkReturning Mark = "returning"
)

// DayType selects between the two alternating schedules.
type DayType string

const (
	DayA DayType = "A"
	DayB DayType = "B"
)

// PeriodEntry is one period missed on a given date.
type PeriodEntry struct {
	Period PeriodCode
	Mark   Mark
	Time   string
}

// Annotation renders the leave/return note, e.g. "leaving at 9:00am".
// Empty when the whole period is missed.
func (p PeriodEntry) Annotation() string {
	if p.Mark == MarkNone {
		return ""
	}
	return string(p.Mark) + " at " + p.Time
}

// AbsenceEntry is one parsed date/period line.
type AbsenceEntry struct {
	Date    time.Time
	DateStr string
	Periods []PeriodEntry
}

// Weekday returns the English weekday name of the entry date.
func (e AbsenceEntry) Weekday() string {
	return e.Date.Weekday().String()
}
