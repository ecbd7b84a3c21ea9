package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/mailclient"
	"github.com/stemsi/absence-emailer/internal/model"
)

// ErrAborted is returned when the operator declines to send.
var ErrAborted = errors.New("sending cancelled by operator")

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// SendRecorder keeps a log of sent emails.
type SendRecorder interface {
	Record(ctx context.Context, rec model.SendRecord) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, model.SendRecord) error { return nil }

// DispatchService sends rendered emails one teacher at a time.
type DispatchService struct {
	sender   mailclient.Sender
	confirm  Confirmer
	recorder SendRecorder
	out      io.Writer
	log      zerolog.Logger
	runID    uuid.UUID
	now      func() time.Time

	testSent  bool
	confirmed bool
}

// NewDispatchService creates a new DispatchService. Sends are not recorded
// until SetRecorder is called.
func NewDispatchService(sender mailclient.Sender, confirm Confirmer, out io.Writer, log zerolog.Logger) *DispatchService {
	return &DispatchService{
		sender:   sender,
		confirm:  confirm,
		recorder: nopRecorder{},
		out:      out,
		log:      log.With().Str("component", "dispatch").Str("sender", sender.Name()).Logger(),
		now:      time.Now,
	}
}

// SetRecorder records every successful send under runID.
func (s *DispatchService) SetRecorder(rec SendRecorder, runID uuid.UUID) {
	s.recorder = rec
	s.runID = runID
}

// Run sends emails in order. When testAddr is set, the first email is sent
// there once before anything else. The operator must confirm before the
// first real send; declining returns ErrAborted with nothing sent to
// teachers. A cancelled ctx stops before the next email the same way.
// Send failures are returned as-is.
func (s *DispatchService) Run(ctx context.Context, emails []model.RenderedEmail, testAddr string) (int, error) {
	sent := 0
	for _, email := range emails {
		if err := s.stopped(ctx); err != nil {
			return sent, err
		}

		if testAddr != "" && !s.testSent {
			s.testSent = true
			fmt.Fprintf(s.out, "Sending a test email to %s. Check to make sure email looks OK.\n", testAddr)
			if err := s.send(ctx, testAddr, email, true); err != nil {
				return sent, fmt.Errorf("send test email: %w", err)
			}
		}

		if !s.confirmed {
			ok, err := s.confirm.Confirm("Send student absence email to teachers")
			if err != nil {
				return sent, err
			}
			if !ok {
				fmt.Fprintln(s.out, "  Exiting program!!!")
				return sent, ErrAborted
			}
			s.confirmed = true
			if err := s.stopped(ctx); err != nil {
				return sent, err
			}
		}

		fmt.Fprintf(s.out, "  Sending email to %s  %s\n", email.To, email.Summary)
		if err := s.send(ctx, email.To, email, false); err != nil {
			return sent, fmt.Errorf("send email to %s: %w", email.To, err)
		}
		sent++
	}
	return sent, nil
}

// stopped reports ctx cancellation as ErrAborted.
func (s *DispatchService) stopped(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(s.out, "  Exiting program!!!")
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return nil
}

func (s *DispatchService) send(ctx context.Context, to string, email model.RenderedEmail, test bool) error {
	if err := s.sender.Send(ctx, to, email.Subject, email.HTML, email.Text); err != nil {
		return err
	}

	s.log.Debug().Str("to", to).Bool("test", test).Msg("Email sent")

	rec := model.SendRecord{
		RunID:     s.runID,
		Recipient: to,
		Subject:   email.Subject,
		Test:      test,
		SentAt:    s.now(),
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		diag.New(diag.CodeAuditFailed, "could not record email to %s: %v", to, err).Log(s.log)
	}
	return nil
}

// FinalSummary is the closing line printed after all sends.
func FinalSummary(res model.AggregateResult) string {
	return fmt.Sprintf("DONE!!! Sent %d emails (%d students missed %d student-periods. %.2f students/period.)",
		res.Emails(), res.Students, res.StudentPeriods(), res.Ratio())
}
