package service

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/model"
)

// AggregateService groups requested absences by teacher, date and period.
type AggregateService struct {
	log zerolog.Logger
}

// NewAggregateService creates a new AggregateService.
func NewAggregateService(log zerolog.Logger) *AggregateService {
	return &AggregateService{log: log.With().Str("component", "aggregator").Logger()}
}

// Aggregate cross-joins entries × periods × student IDs against the roster.
// IDs missing from the roster are reported once each; students with no
// class in a period are skipped.
func (s *AggregateService) Aggregate(roster model.Roster, ids []string, entries []model.AbsenceEntry) model.AggregateResult {
	res := model.AggregateResult{
		Aggregation: make(model.Aggregation),
		Students:    len(ids),
	}
	notFound := make(map[string]bool)

	for _, entry := range entries {
		res.PeriodsMissed += len(entry.Periods)
		for _, period := range entry.Periods {
			for _, id := range ids {
				student, ok := roster[id]
				if !ok {
					if !notFound[id] {
						notFound[id] = true
						res.NotFound = append(res.NotFound, id)
					}
					continue
				}
				teacher, ok := student.TeacherFor(period.Period)
				if !ok {
					continue
				}
				res.Aggregation.Add(teacher, entry.DateStr, period, student.Key())
			}
		}
	}

	for _, id := range res.NotFound {
		diag.Warning{
			Code:      diag.CodeStudentNotFound,
			StudentID: id,
			Message:   fmt.Sprintf("Student ID %s was not found in the roster", id),
		}.Log(s.log)
	}

	return res
}
