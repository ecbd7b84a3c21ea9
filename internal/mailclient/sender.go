// Package mailclient hands rendered emails to the desktop mail client.
// Each platform has its own automation mechanism behind the Sender contract.
package mailclient

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/diag"
)

// ErrUnsupported is returned when no automation exists for the platform.
var ErrUnsupported = errors.New("no mail client automation for this platform")

// Sender sends one email. Implementations choose which body they can use.
type Sender interface {
	Send(ctx context.Context, recipient, subject, htmlBody, textBody string) error
	// Name identifies the mechanism in logs.
	Name() string
}

// New selects the Sender for goos. dryRun prints emails to out instead.
// Unknown platforms get a Sender that warns and sends nothing.
func New(goos string, dryRun bool, out io.Writer, log zerolog.Logger) (Sender, error) {
	log = log.With().Str("component", "mailclient").Logger()
	if dryRun {
		return NewConsole(out), nil
	}

	switch goos {
	case "windows":
		return newOutlookCOM(log)
	case "darwin":
		return NewOutlookScript(log), nil
	default:
		diag.New(diag.CodeUnsupportedPlatform,
			"Can not determine if running on a Windows PC or a Mac (%s); emails will not be sent.", goos).Log(log)
		return NewUnsupported(goos, log), nil
	}
}
