package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup initializes the global zerolog logger based on environment configuration.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic)
//   - format: "json" for machine-readable output, "pretty" for the operator console
//
// Output goes to stderr so prompts on stdout stay readable when redirected.
// Returns the configured logger instance.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer

	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
			TimeFormat: "15:04:05",
		}
	} else {
		writer = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	log := zerolog.New(writer).
		With().
		Timestamp().
		Logger()

	return log
}
