package mailclient

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ScriptRunner executes an AppleScript program.
type ScriptRunner func(ctx context.Context, script string) error

// outlookScript drives Outlook for Mac through osascript. AppleScript cannot
// set an HTML body on an outgoing message, so the text body is sent.
type outlookScript struct {
	run ScriptRunner
	log zerolog.Logger
}

// NewOutlookScript creates the macOS sender.
func NewOutlookScript(log zerolog.Logger) Sender {
	return NewOutlookScriptWithRunner(runOsascript, log)
}

// NewOutlookScriptWithRunner creates the macOS sender with a custom runner.
func NewOutlookScriptWithRunner(run ScriptRunner, log zerolog.Logger) Sender {
	return &outlookScript{run: run, log: log}
}

func (o *outlookScript) Name() string { return "outlook-applescript" }

func (o *outlookScript) Send(ctx context.Context, recipient, subject, _, textBody string) error {
	if err := o.run(ctx, AppleScript(recipient, subject, textBody)); err != nil {
		return err
	}
	o.log.Debug().Str("to", recipient).Msg("Handed to Outlook")
	return nil
}

// AppleScript builds the script that creates and sends one message.
// All values are escaped as AppleScript string literals.
func AppleScript(recipient, subject, body string) string {
	return fmt.Sprintf(`tell application "Microsoft Outlook"
    set newMessage to make new outgoing message with properties {subject:"%s"}
    set content of newMessage to "%s"
    make new recipient at newMessage with properties {email address:{address:"%s"}}
    send newMessage
end tell
`, escapeAppleScript(subject), escapeAppleScript(body), escapeAppleScript(recipient))
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\r", `\n`, "\n", `\n`)

func escapeAppleScript(s string) string {
	return appleScriptEscaper.Replace(s)
}

func runOsascript(ctx context.Context, script string) error {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
