package main

import (
	"bytes"
	"testing"

	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	ada := model.NewStudent("S1", "Ada")
	ada.Teachers[model.Period1] = "t1@x.edu"
	ada.Teachers[model.PeriodAdvisory] = "adv@x.edu"
	bob := model.NewStudent("S2", "Bob")
	bob.Teachers[model.Period1] = "t9@x.edu"

	var out bytes.Buffer
	report(&out, model.Roster{"S1": ada, "S2": bob}, []diag.Warning{
		{Code: diag.CodeMissingEmail},
		{Code: diag.CodeBadRow},
		{Code: diag.CodeMissingEmail},
	})

	assert.Equal(t,
		"Students: 2\n"+
			"  Period 1    2 teachers\n"+
			"  Period Adv  1 teachers\n"+
			"\n3 problems:\n"+
			"  BAD_ROW                1  (Malformed roster row)\n"+
			"  MISSING_EMAIL          2  (Missing teacher email)\n",
		out.String())
}

func TestReport_Clean(t *testing.T) {
	var out bytes.Buffer
	report(&out, model.Roster{}, nil)
	assert.Equal(t, "Students: 0\n\nNo problems found.\n", out.String())
}
