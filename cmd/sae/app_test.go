package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stemsi/absence-emailer/internal/prompt"
	"github.com/stemsi/absence-emailer/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	to       []string
	subjects []string
	html     []string
}

func (o *outbox) Name() string { return "outbox" }

func (o *outbox) Send(_ context.Context, to, subject, html, _ string) error {
	o.to = append(o.to, to)
	o.subjects = append(o.subjects, subject)
	o.html = append(o.html, html)
	return nil
}

type auditLog struct{ recs []model.SendRecord }

func (l *auditLog) Record(_ context.Context, rec model.SendRecord) error {
	l.recs = append(l.recs, rec)
	return nil
}

// Tuesday 2025-04-15, during the school year.
var sessionNow = time.Date(2025, time.April, 15, 9, 0, 0, 0, time.UTC)

const sessionRoster = `Student ID,Name,Period Type,Period,Teacher,Teacher Email
S1,Ada Lovelace,CLASS,A-01 Algebra,Smith,t1@x.edu
S1,Ada Lovelace,CLASS,A-03 Chemistry,Jones,t2@x.edu
S2,Bob Babbage,CLASS,A-01 Algebra,Smith,t1@x.edu
S2,Bob Babbage,CLASS,A-ADV,Advisor,adv@x.edu
`

func writeRoster(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultRosterFile)
	require.NoError(t, os.WriteFile(path, []byte(sessionRoster), 0o600))
	require.NoError(t, os.Chtimes(path, sessionNow, sessionNow))
	return path
}

func newTestApp(input string, sender *outbox) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{
		SubjectPrefix: "[SAE] ",
		Footer:        config.DefaultFooter,
		Roster:        config.DefaultRosterRules(),
		Schedule:      config.DefaultSchedule(),
	}
	return &app{
		cfg:     cfg,
		log:     zerolog.Nop(),
		console: prompt.NewConsole(strings.NewReader(input), &out, zerolog.Nop()),
		sender:  sender,
		runID:   uuid.New(),
		now:     func() time.Time { return sessionNow },
	}, &out
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestApp_OneStudentTwoTeachers(t *testing.T) {
	sender := &outbox{}
	a, out := newTestApp(script(
		"Field trip",   // subject
		"04/18/25 1,3", // dates
		"",
		"S1", // ids
		"",
		"Ada is at the science fair.", // message
		"",
		"",  // on behalf of
		"",  // test address
		"y", // confirm
	), sender)

	require.NoError(t, a.run(context.Background(), writeRoster(t)))

	assert.Equal(t, []string{"t1@x.edu", "t2@x.edu"}, sender.to)
	assert.Equal(t, []string{"[SAE] Field trip", "[SAE] Field trip"}, sender.subjects)
	assert.Contains(t, sender.html[0], "<h4>Period 1</h4>")
	assert.Contains(t, sender.html[1], "<h4>Period 3</h4>")
	assert.Contains(t, sender.html[1], "Ada Lovelace")
	assert.Contains(t, sender.html[1], "Ada is at the science fair.")

	assert.Contains(t, out.String(), "  in 3 days, on Friday 04/18/25, periods: 1 3 \n")
	assert.Contains(t, out.String(), "  Sending email to t1@x.edu  Period 1(1) \n")
	assert.Contains(t, out.String(),
		"DONE!!! Sent 2 emails (1 students missed 2 student-periods. 1.00 students/period.)")
}

func TestApp_FridayTestEmailAndAudit(t *testing.T) {
	sender := &outbox{}
	a, out := newTestApp(script(
		"Assembly",
		"04/18/25 2,3",
		"4/18/2025", // four-digit year, disregarded
		"04/18/25",  // bare Friday
		"",
		"a", // A-day, asked while the lines are parsed
		"S2",
		"S2", // duplicate, disregarded
		"X9", // not in roster
		"",
		"Line one",
		"Line two",
		"",
		"Ms. Frizzle",
		"not-an-address",
		"me@x.edu",
		"y",
	), sender)
	audit := &auditLog{}
	a.recorder = audit

	require.NoError(t, a.run(context.Background(), writeRoster(t)))

	assert.Contains(t, out.String(), "Is Friday 04/18/25 an A-day or a B-day")
	assert.Contains(t, out.String(), "Sending a test email to me@x.edu. Check to make sure email looks OK.\n")

	require.Equal(t, []string{"me@x.edu", "adv@x.edu", "t1@x.edu"}, sender.to)
	assert.Contains(t, sender.html[0], "on behalf of Ms. Frizzle")
	assert.Contains(t, sender.html[0], "Line one<br>Line two")

	require.Len(t, audit.recs, 3)
	assert.True(t, audit.recs[0].Test)
	assert.Equal(t, a.runID, audit.recs[2].RunID)

	// 2 + 5 periods missed, S2 has classes in Adv and 1 only.
	assert.Contains(t, out.String(),
		"DONE!!! Sent 2 emails (2 students missed 2 student-periods. 0.29 students/period.)")
}

func TestApp_Declined(t *testing.T) {
	sender := &outbox{}
	a, out := newTestApp(script(
		"Trip",
		"04/14/25",
		"",
		"S1",
		"",
		"",
		"",
		"",
		"n",
	), sender)

	err := a.run(context.Background(), writeRoster(t))
	assert.ErrorIs(t, err, service.ErrAborted)
	assert.Empty(t, sender.to)
	assert.Contains(t, out.String(), "Exiting program!!!")
	assert.NotContains(t, out.String(), "DONE!!!")
}

func TestApp_MissingRoster(t *testing.T) {
	a, _ := newTestApp("", &outbox{})
	assert.Error(t, a.run(context.Background(), filepath.Join(t.TempDir(), "nope.csv")))
}

func TestUniqueID(t *testing.T) {
	assert.NoError(t, uniqueID("S1", []string{"S2"}))
	assert.ErrorIs(t, uniqueID("S1", []string{"S2", "S1"}), errDuplicateID)
}

func TestResolveRosterPath(t *testing.T) {
	cfg := &config.Config{RosterPath: "/env/roster.csv"}
	assert.Equal(t, "/flag.csv", resolveRosterPath("/flag.csv", cfg))
	assert.Equal(t, "/env/roster.csv", resolveRosterPath("", cfg))
}

func interruptedSession() string {
	return script(
		"Trip",
		"04/14/25",
		"",
		"S1",
		"",
		"",
		"",
		"me@x.edu",
		"y",
	)
}

func TestApp_CancelledContextNeverConfirms(t *testing.T) {
	sender := &outbox{}
	a, out := newTestApp(interruptedSession(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.run(ctx, writeRoster(t))
	assert.ErrorIs(t, err, service.ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.to)
	assert.NotContains(t, out.String(), "(answer 'y' or 'n')")
	assert.Contains(t, out.String(), "  Exiting program!!!\n")
	assert.NotContains(t, out.String(), "DONE!!!")
}

func TestApp_InterruptOnlyWrapsSending(t *testing.T) {
	sender := &outbox{}
	a, out := newTestApp(interruptedSession(), sender)

	wrapped := 0
	a.interrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
		wrapped++
		// Behaves as if Ctrl-C arrived as soon as sending began.
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		return ctx, cancel
	}

	err := a.run(context.Background(), writeRoster(t))
	assert.ErrorIs(t, err, service.ErrAborted)
	assert.Equal(t, 1, wrapped)
	assert.Contains(t, out.String(), "  in -1 day, on Monday 04/14/25, periods: 1 2 3 4 \n", "prompts ran normally")
	assert.Empty(t, sender.to)
	assert.NotContains(t, out.String(), "(answer 'y' or 'n')")
}
