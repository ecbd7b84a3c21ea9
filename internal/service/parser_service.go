package service

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/model"
)

// ErrInvalidLine is returned for date/period lines that cannot be used.
var ErrInvalidLine = errors.New("invalid date/period line")

// inputDateLayout accepts one- or two-digit months and days.
const inputDateLayout = "1/2/06"

const tokenExpr = `(?:[1-8]|(?i:adv))(?:(?:leaving|returning)@(?:0?[1-9]|1[0-2]):[0-5][0-9](?i:am|pm))?`

var (
	linePattern = regexp.MustCompile(
		`^((?:0?[1-9]|1[0-2])/(?:0?[1-9]|[12][0-9]|3[01])/\d{2})(?: (` + tokenExpr + `(?:,` + tokenExpr + `)*))?$`)
	tokenPattern = regexp.MustCompile(
		`^([1-8]|(?i:adv))(?:(leaving|returning)@((?:0?[1-9]|1[0-2]):[0-5][0-9](?i:am|pm)))?$`)
)

// DayChooser resolves whether an ambiguous weekday is an A-day or a B-day.
type DayChooser interface {
	ChooseDay(weekday, date string) (model.DayType, error)
}

// ParserService turns operator-typed date/period lines into absence entries.
type ParserService struct {
	schedule config.Schedule
	chooser  DayChooser
	log      zerolog.Logger
	now      func() time.Time
}

// NewParserService creates a new ParserService.
func NewParserService(schedule config.Schedule, chooser DayChooser, log zerolog.Logger) *ParserService {
	return &ParserService{
		schedule: schedule,
		chooser:  chooser,
		log:      log.With().Str("component", "parser").Logger(),
		now:      time.Now,
	}
}

// SetClock replaces the clock used for dates and "days from now".
func (s *ParserService) SetClock(now func() time.Time) {
	s.now = now
}

// Validate checks one line without prompting. Its signature matches
// prompt.LineValidator so it can gate line entry directly.
func (s *ParserService) Validate(line string, _ []string) error {
	_, _, err := s.split(line)
	return err
}

// split validates line and returns its date and raw period tokens.
func (s *ParserService) split(line string) (time.Time, []string, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, nil, fmt.Errorf("%w: expected mm/dd/yy #,#,# (# = 1-8 or Adv, optionally leaving@h:mmam or returning@h:mmpm)", ErrInvalidLine)
	}

	date, err := time.ParseInLocation(inputDateLayout, m[1], s.now().Location())
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %s is not a calendar date", ErrInvalidLine, m[1])
	}

	if m[2] == "" {
		if !s.schedule.HasClasses(date.Weekday()) {
			return time.Time{}, nil, fmt.Errorf("%w: no classes meet on %s; list the periods explicitly",
				ErrInvalidLine, date.Weekday())
		}
		return date, nil, nil
	}

	tokens := strings.Split(m[2], ",")
	seen := make(map[model.PeriodCode]bool, len(tokens))
	for _, tok := range tokens {
		p := ParseToken(tok).Period
		if seen[p] {
			return time.Time{}, nil, fmt.Errorf("%w: period %s listed twice", ErrInvalidLine, p)
		}
		seen[p] = true
	}
	return date, tokens, nil
}

// Parse turns one line into an AbsenceEntry. A bare date expands to the
// day's full period sequence; a single period expands to the rest of the
// day starting at that period; a list is taken as typed. Ambiguous weekdays
// are resolved through the DayChooser.
func (s *ParserService) Parse(line string) (model.AbsenceEntry, error) {
	date, tokens, err := s.split(line)
	if err != nil {
		return model.AbsenceEntry{}, err
	}
	entry := model.AbsenceEntry{Date: date, DateStr: date.Format(model.DateLayout)}

	switch len(tokens) {
	case 0:
		seq, _, err := s.sequence(entry)
		if err != nil {
			return model.AbsenceEntry{}, err
		}
		for _, p := range seq {
			entry.Periods = append(entry.Periods, model.PeriodEntry{Period: p})
		}
	case 1:
		first := ParseToken(tokens[0])
		entry.Periods = []model.PeriodEntry{first}

		seq, ok, err := s.sequence(entry)
		if err != nil {
			return model.AbsenceEntry{}, err
		}
		idx := indexOf(seq, first.Period)
		if !ok || idx < 0 {
			diag.Warning{
				Code: diag.CodePeriodNotScheduled,
				Message: fmt.Sprintf("period %s does not normally meet on %s %s; using it alone",
					first.Period, entry.Weekday(), entry.DateStr),
			}.Log(s.log)
			break
		}
		for _, p := range seq[idx+1:] {
			entry.Periods = append(entry.Periods, model.PeriodEntry{Period: p})
		}
	default:
		for _, tok := range tokens {
			entry.Periods = append(entry.Periods, ParseToken(tok))
		}
	}

	return entry, nil
}

// ParseAll parses every line in order, echoing a summary of each to echo.
func (s *ParserService) ParseAll(lines []string, echo io.Writer) ([]model.AbsenceEntry, error) {
	entries := make([]model.AbsenceEntry, 0, len(lines))
	for _, line := range lines {
		entry, err := s.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", line, err)
		}
		_, _ = fmt.Fprintf(echo, "  %s\n", s.Summary(entry))
		entries = append(entries, entry)
	}
	return entries, nil
}

// Summary describes an entry for operator confirmation, e.g.
// "in 3 days, on Friday 04/18/25, periods: 1 3(leaving at 9:00am) ".
func (s *ParserService) Summary(entry model.AbsenceEntry) string {
	days := s.daysUntil(entry.Date)
	plural := ""
	if days > 1 {
		plural = "s"
	}

	var b strings.Builder
	for _, p := range entry.Periods {
		b.WriteString(string(p.Period))
		if note := p.Annotation(); note != "" {
			b.WriteString("(" + note + ")")
		}
		b.WriteString(" ")
	}
	return fmt.Sprintf("in %d day%s, on %s %s, periods: %s", days, plural, entry.Weekday(), entry.DateStr, b.String())
}

// sequence returns the day's scheduled periods, asking for A/B when needed.
func (s *ParserService) sequence(entry model.AbsenceEntry) ([]model.PeriodCode, bool, error) {
	day := entry.Date.Weekday()
	dayType := model.DayA
	if s.schedule.IsAmbiguous(day) {
		dt, err := s.chooser.ChooseDay(day.String(), entry.DateStr)
		if err != nil {
			return nil, false, fmt.Errorf("choose A/B day for %s: %w", entry.DateStr, err)
		}
		dayType = dt
	}
	seq, ok := s.schedule.Periods(day, dayType)
	return seq, ok, nil
}

func (s *ParserService) daysUntil(date time.Time) int {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return int(day.Sub(today).Round(time.Hour).Hours() / 24)
}

// ParseToken splits a period token such as "3leaving@9:00am" into its parts.
// Tokens that do not match are returned as a bare period.
func ParseToken(tok string) model.PeriodEntry {
	m := tokenPattern.FindStringSubmatch(tok)
	if m == nil {
		return model.PeriodEntry{Period: model.ParsePeriodCode(tok)}
	}
	return model.PeriodEntry{
		Period: model.ParsePeriodCode(m[1]),
		Mark:   model.Mark(m[2]),
		Time:   strings.ToLower(m[3]),
	}
}

func indexOf(seq []model.PeriodCode, p model.PeriodCode) int {
	for i, c := range seq {
		if c == p {
			return i
		}
	}
	return -1
}
