package mailclient

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// console prints emails instead of sending them (dry runs).
type console struct {
	out io.Writer
	now func() time.Time
}

// NewConsole creates a Sender that writes each email to out.
func NewConsole(out io.Writer) Sender {
	return &console{out: out, now: time.Now}
}

func (c *console) Name() string { return "console" }

func (c *console) Send(_ context.Context, recipient, subject, _, textBody string) error {
	body := new(strings.Builder)

	_, _ = fmt.Fprintf(body, "Date: %s\r\n", c.now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", recipient)
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", textBody)

	_, err := io.WriteString(c.out, body.String())
	return err
}
