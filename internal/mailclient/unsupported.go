package mailclient

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/diag"
)

// unsupported stands in on platforms without mail automation. It reports
// each email it could not send and returns no error.
type unsupported struct {
	goos string
	log  zerolog.Logger
}

// NewUnsupported creates the Sender used on unknown platforms.
func NewUnsupported(goos string, log zerolog.Logger) Sender {
	return &unsupported{goos: goos, log: log}
}

func (u *unsupported) Name() string { return "unsupported" }

func (u *unsupported) Send(_ context.Context, recipient, _, _, _ string) error {
	diag.New(diag.CodeUnsupportedPlatform, "no mail client on %s; email to %s was not sent", u.goos, recipient).Log(u.log)
	return nil
}
