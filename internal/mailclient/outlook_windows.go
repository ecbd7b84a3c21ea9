//go:build windows

package mailclient

import (
	"context"
	"fmt"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/rs/zerolog"
)

// olMailItem is Outlook's OlItemType for a mail message.
const olMailItem = 0

// outlookCOM drives a locally installed Outlook through COM automation.
// It sends the HTML body.
type outlookCOM struct {
	log zerolog.Logger
}

func newOutlookCOM(log zerolog.Logger) (Sender, error) {
	return &outlookCOM{log: log}, nil
}

func (o *outlookCOM) Name() string { return "outlook-com" }

func (o *outlookCOM) Send(ctx context.Context, recipient, subject, htmlBody, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// COM objects are bound to the thread that initialized COM.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := checkCoInitialize(ole.CoInitialize(0)); err != nil {
		return err
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Outlook.Application")
	if err != nil {
		return fmt.Errorf("start Outlook: %w", err)
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query Outlook dispatch: %w", err)
	}
	defer app.Release()

	itemVar, err := oleutil.CallMethod(app, "CreateItem", olMailItem)
	if err != nil {
		return fmt.Errorf("create mail item: %w", err)
	}
	item := itemVar.ToIDispatch()
	defer item.Release()

	props := []struct{ name, value string }{
		{"To", recipient},
		{"Subject", subject},
		{"HTMLBody", htmlBody},
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(item, p.name, p.value); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
	}

	if _, err := oleutil.CallMethod(item, "Send"); err != nil {
		return fmt.Errorf("send via Outlook: %w", err)
	}

	o.log.Debug().Str("to", recipient).Msg("Handed to Outlook")
	return nil
}
