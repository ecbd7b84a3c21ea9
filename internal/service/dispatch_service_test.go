package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	To, Subject, HTML, Text string
}

type recordingSender struct {
	sent   []sentMail
	failOn string
}

func (r *recordingSender) Name() string { return "recording" }

func (r *recordingSender) Send(_ context.Context, to, subject, html, text string) error {
	if to == r.failOn {
		return errors.New("outlook is not running")
	}
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, HTML: html, Text: text})
	return nil
}

type scriptedConfirmer struct {
	answers []bool
	err     error
	asked   int
}

func (s *scriptedConfirmer) Confirm(string) (bool, error) {
	s.asked++
	if s.err != nil {
		return false, s.err
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

type memRecorder struct {
	recs []model.SendRecord
	err  error
}

func (m *memRecorder) Record(_ context.Context, rec model.SendRecord) error {
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, rec)
	return nil
}

func twoEmails() []model.RenderedEmail {
	return []model.RenderedEmail{
		{To: "t1@x.edu", Subject: "[SAE] Trip", HTML: "<p>1</p>", Text: "1", Summary: "Period 1(1) "},
		{To: "t2@x.edu", Subject: "[SAE] Trip", HTML: "<p>2</p>", Text: "2", Summary: "Period 3(1) "},
	}
}

func TestDispatchService_TestEmailThenTeachers(t *testing.T) {
	sender := &recordingSender{}
	confirm := &scriptedConfirmer{answers: []bool{true}}
	var out bytes.Buffer

	svc := NewDispatchService(sender, confirm, &out, zerolog.Nop())
	n, err := svc.Run(context.Background(), twoEmails(), "me@x.edu")
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, confirm.asked)
	require.Len(t, sender.sent, 3)
	assert.Equal(t, sentMail{To: "me@x.edu", Subject: "[SAE] Trip", HTML: "<p>1</p>", Text: "1"}, sender.sent[0])
	assert.Equal(t, "t1@x.edu", sender.sent[1].To)
	assert.Equal(t, "t2@x.edu", sender.sent[2].To)

	assert.Equal(t,
		"Sending a test email to me@x.edu. Check to make sure email looks OK.\n"+
			"  Sending email to t1@x.edu  Period 1(1) \n"+
			"  Sending email to t2@x.edu  Period 3(1) \n",
		out.String())
}

func TestDispatchService_NoTestAddress(t *testing.T) {
	sender := &recordingSender{}
	confirm := &scriptedConfirmer{answers: []bool{true}}

	svc := NewDispatchService(sender, confirm, &bytes.Buffer{}, zerolog.Nop())
	n, err := svc.Run(context.Background(), twoEmails(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"t1@x.edu", "t2@x.edu"}, []string{sender.sent[0].To, sender.sent[1].To})
}

func TestDispatchService_Declined(t *testing.T) {
	sender := &recordingSender{}
	confirm := &scriptedConfirmer{answers: []bool{false}}
	var out bytes.Buffer

	svc := NewDispatchService(sender, confirm, &out, zerolog.Nop())
	n, err := svc.Run(context.Background(), twoEmails(), "me@x.edu")

	assert.ErrorIs(t, err, ErrAborted)
	assert.Zero(t, n)
	require.Len(t, sender.sent, 1, "only the test email goes out")
	assert.Equal(t, "me@x.edu", sender.sent[0].To)
	assert.Contains(t, out.String(), "  Exiting program!!!\n")
}

func TestDispatchService_ConfirmError(t *testing.T) {
	closed := errors.New("input closed")
	svc := NewDispatchService(&recordingSender{}, &scriptedConfirmer{err: closed}, &bytes.Buffer{}, zerolog.Nop())

	_, err := svc.Run(context.Background(), twoEmails(), "")
	assert.ErrorIs(t, err, closed)
}

func TestDispatchService_NothingToSend(t *testing.T) {
	confirm := &scriptedConfirmer{}
	sender := &recordingSender{}

	svc := NewDispatchService(sender, confirm, &bytes.Buffer{}, zerolog.Nop())
	n, err := svc.Run(context.Background(), nil, "me@x.edu")
	require.NoError(t, err)

	assert.Zero(t, n)
	assert.Zero(t, confirm.asked)
	assert.Empty(t, sender.sent)
}

func TestDispatchService_SendFailureStops(t *testing.T) {
	sender := &recordingSender{failOn: "t1@x.edu"}
	svc := NewDispatchService(sender, &scriptedConfirmer{answers: []bool{true}}, &bytes.Buffer{}, zerolog.Nop())

	n, err := svc.Run(context.Background(), twoEmails(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t1@x.edu")
	assert.Zero(t, n)
	assert.Empty(t, sender.sent)
}

func TestDispatchService_RecordsSends(t *testing.T) {
	rec := &memRecorder{}
	runID := uuid.New()
	at := time.Date(2025, time.April, 15, 8, 0, 0, 0, time.UTC)

	svc := NewDispatchService(&recordingSender{}, &scriptedConfirmer{answers: []bool{true}}, &bytes.Buffer{}, zerolog.Nop())
	svc.SetRecorder(rec, runID)
	svc.now = func() time.Time { return at }

	_, err := svc.Run(context.Background(), twoEmails(), "me@x.edu")
	require.NoError(t, err)

	require.Len(t, rec.recs, 3)
	assert.Equal(t, model.SendRecord{RunID: runID, Recipient: "me@x.edu", Subject: "[SAE] Trip", Test: true, SentAt: at}, rec.recs[0])
	assert.False(t, rec.recs[1].Test)
	assert.Equal(t, "t2@x.edu", rec.recs[2].Recipient)
}

func TestDispatchService_RecorderFailureDoesNotStopSending(t *testing.T) {
	sender := &recordingSender{}
	svc := NewDispatchService(sender, &scriptedConfirmer{answers: []bool{true}}, &bytes.Buffer{}, zerolog.Nop())
	svc.SetRecorder(&memRecorder{err: errors.New("db down")}, uuid.New())

	n, err := svc.Run(context.Background(), twoEmails(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, sender.sent, 2)
}

func TestFinalSummary(t *testing.T) {
	res := model.AggregateResult{Aggregation: make(model.Aggregation), Students: 1, PeriodsMissed: 2}
	res.Aggregation.Add("t1@x.edu", "04/18/25", model.PeriodEntry{Period: model.Period1}, "Ada_S1")
	res.Aggregation.Add("t2@x.edu", "04/18/25", model.PeriodEntry{Period: model.Period3}, "Ada_S1")

	assert.Equal(t, "DONE!!! Sent 2 emails (1 students missed 2 student-periods. 1.00 students/period.)", FinalSummary(res))
}

// cancelAfterSend cancels the run once its first email is out.
type cancelAfterSend struct {
	recordingSender
	cancel context.CancelFunc
}

func (c *cancelAfterSend) Send(ctx context.Context, to, subject, html, text string) error {
	defer c.cancel()
	return c.recordingSender.Send(ctx, to, subject, html, text)
}

func TestDispatchService_CancelledBeforeConfirm(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &recordingSender{}
	confirm := &scriptedConfirmer{answers: []bool{true}}
	var out bytes.Buffer

	svc := NewDispatchService(sender, confirm, &out, zerolog.Nop())
	n, err := svc.Run(ctx, twoEmails(), "me@x.edu")

	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Zero(t, confirm.asked)
	assert.Empty(t, sender.sent)
	assert.Equal(t, "  Exiting program!!!\n", out.String())
}

func TestDispatchService_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &cancelAfterSend{cancel: cancel}
	svc := NewDispatchService(sender, &scriptedConfirmer{answers: []bool{true}}, &bytes.Buffer{}, zerolog.Nop())

	n, err := svc.Run(ctx, twoEmails(), "")
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, n)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "t1@x.edu", sender.sent[0].To)
}
