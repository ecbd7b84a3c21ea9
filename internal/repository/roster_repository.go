package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stemsi/absence-emailer/internal/validator"
)

// rosterColumns is the fixed column count of the schedule export.
const rosterColumns = 6

// rosterRow is one data row of the roster CSV, in column order.
type rosterRow struct {
	StudentID    string `csv:"student_id" validate:"required"`
	Name         string `csv:"name"`
	PeriodType   string `csv:"period_type"`
	PeriodCode   string `csv:"period_code"`
	TeacherName  string `csv:"teacher_name"`
	TeacherEmail string `csv:"teacher_email" validate:"required"`
}

func newRosterRow(record []string) rosterRow {
	clean := make([]string, rosterColumns)
	for i := range clean {
		clean[i] = strings.TrimSpace(record[i])
	}
	return rosterRow{
		StudentID:    clean[0],
		Name:         clean[1],
		PeriodType:   clean[2],
		PeriodCode:   clean[3],
		TeacherName:  clean[4],
		TeacherEmail: clean[5],
	}
}

// RosterRepository loads the student roster from the schedule CSV export.
type RosterRepository struct {
	rules config.RosterRules
	log   zerolog.Logger
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(rules config.RosterRules, log zerolog.Logger) *RosterRepository {
	return &RosterRepository{
		rules: rules,
		log:   log.With().Str("component", "roster").Logger(),
	}
}

// Load reads the roster at path. Bad rows are skipped and reported as
// warnings; only an unreadable file is an error.
func (r *RosterRepository) Load(path string) (model.Roster, []diag.Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	roster, warnings, err := r.Read(f)
	if err != nil {
		return nil, warnings, fmt.Errorf("read roster %s: %w", filepath.Base(path), err)
	}

	r.log.Info().
		Int("students", len(roster)).
		Int("warnings", len(warnings)).
		Str("file", filepath.Base(path)).
		Msg("Roster loaded")

	return roster, warnings, nil
}

// Read parses roster CSV data from rd. The first row is a header.
func (r *RosterRepository) Read(rd io.Reader) (model.Roster, []diag.Warning, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	roster := make(model.Roster)
	var warnings []diag.Warning
	warn := func(w diag.Warning) {
		w.Log(r.log)
		warnings = append(warnings, w)
	}

	rowNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			warn(diag.Warning{Code: diag.CodeBadRow, Row: rowNum, Message: perr.Error()})
			continue
		}
		if err != nil {
			return nil, warnings, err
		}
		if rowNum == 1 {
			continue // header
		}
		if len(record) != rosterColumns {
			warn(diag.Warning{
				Code:    diag.CodeBadRow,
				Row:     rowNum,
				Message: fmt.Sprintf("row %d has %d columns, expected %d", rowNum, len(record), rosterColumns),
			})
			continue
		}

		r.addRow(roster, rowNum, newRosterRow(record), warn)
	}

	return roster, warnings, nil
}

// addRow merges one row into roster, reporting problems through warn.
// A row with an unrecognized period is still merged under PeriodUnknown.
func (r *RosterRepository) addRow(roster model.Roster, rowNum int, row rosterRow, warn func(diag.Warning)) {
	if r.rules.IgnorePeriod(row.PeriodCode) {
		return
	}

	period := r.rules.Canonical(row.PeriodCode)
	if period == model.PeriodUnknown {
		warn(diag.Warning{
			Code:      diag.CodeUnknownPeriod,
			Row:       rowNum,
			StudentID: row.StudentID,
			Message: fmt.Sprintf("row %d Student ID %s has unrecognized period %q; add it to the period prefix table",
				rowNum, row.StudentID, row.PeriodCode),
		})
	}

	if r.rules.IgnorePeriodType(row.PeriodType) {
		return
	}

	if fields := validator.Struct(row); fields != nil {
		if _, missing := fields["teacher_email"]; missing && row.StudentID != "" {
			warn(diag.Warning{
				Code:      diag.CodeMissingEmail,
				Row:       rowNum,
				StudentID: row.StudentID,
				Message: fmt.Sprintf("row %d Student ID %s for %s does NOT have a teacher email. Skipping student.",
					rowNum, row.StudentID, row.TeacherName),
			})
			return
		}
		warn(diag.Warning{
			Code:    diag.CodeBadRow,
			Row:     rowNum,
			Message: fmt.Sprintf("row %d skipped: %s", rowNum, validator.Join(fields)),
		})
		return
	}

	student, exists := roster[row.StudentID]
	if !exists {
		student = model.NewStudent(row.StudentID, row.Name)
		student.Teachers[period] = row.TeacherEmail
		roster[row.StudentID] = student
		return
	}

	if row.Name != student.Name {
		warn(diag.Warning{
			Code:      diag.CodeDuplicateName,
			Row:       rowNum,
			StudentID: row.StudentID,
			Message: fmt.Sprintf("row %d Student ID %s for name %s already exists with name %s",
				rowNum, row.StudentID, row.Name, student.Name),
		})
	}
	if _, taken := student.Teachers[period]; taken {
		warn(diag.Warning{
			Code:      diag.CodeDuplicatePeriod,
			Row:       rowNum,
			StudentID: row.StudentID,
			Message:   fmt.Sprintf("row %d Student ID %s already has a previous period %s", rowNum, row.StudentID, period),
		})
		return
	}
	student.Teachers[period] = row.TeacherEmail
}

// CheckFreshness warns when the roster file was not modified during the
// current school year. It never fails the load.
func (r *RosterRepository) CheckFreshness(path string, now time.Time) (*diag.Warning, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat roster: %w", err)
	}
	mtime := info.ModTime().In(now.Location())
	if InAcademicYear(mtime, now) {
		return nil, nil
	}
	w := diag.New(diag.CodeStaleRoster, "%s from %s is not for this school year.",
		filepath.Base(path), mtime.Format("Jan 02, 2006"))
	w.Log(r.log)
	return &w, nil
}

// InAcademicYear reports whether t falls between the August 1 before now
// and the June after it. From August on the window closes June 30 of next
// year; earlier in the year it closes June 8.
func InAcademicYear(t, now time.Time) bool {
	loc := now.Location()
	var start, end time.Time
	if now.Month() >= time.August {
		start = time.Date(now.Year(), time.August, 1, 0, 0, 0, 0, loc)
		end = time.Date(now.Year()+1, time.June, 30, 23, 59, 59, 0, loc)
	} else {
		start = time.Date(now.Year()-1, time.August, 1, 0, 0, 0, 0, loc)
		end = time.Date(now.Year(), time.June, 8, 23, 59, 59, 0, loc)
	}
	return !t.Before(start) && !t.After(end)
}
