package diag

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Code is a typed warning code for consistent operator diagnostics.
type Code string

const (
	// ─── Roster ────────────────────────────────────────────────────────
	CodeBadRow          Code = "BAD_ROW"
	CodeUnknownPeriod   Code = "UNKNOWN_PERIOD"
	CodeMissingEmail    Code = "MISSING_EMAIL"
	CodeDuplicateName   Code = "DUPLICATE_NAME"
	CodeDuplicatePeriod Code = "DUPLICATE_PERIOD"
	CodeStaleRoster     Code = "STALE_ROSTER"

	// ─── Operator input ────────────────────────────────────────────────
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodePeriodNotScheduled Code = "PERIOD_NOT_SCHEDULED"
	CodeStudentNotFound    Code = "STUDENT_NOT_FOUND"

	// ─── Dispatch ──────────────────────────────────────────────────────
	CodeUnsupportedPlatform Code = "UNSUPPORTED_PLATFORM"
	CodeAuditFailed         Code = "AUDIT_FAILED"
)

// Title returns a short human-readable label for a code.
func Title(code Code) string {
	switch code {
	case CodeBadRow:
		return "Malformed roster row"
	case CodeUnknownPeriod:
		return "Unrecognized period"
	case CodeMissingEmail:
		return "Missing teacher email"
	case CodeDuplicateName:
		return "Student ID reused with a different name"
	case CodeDuplicatePeriod:
		return "Period already assigned"
	case CodeStaleRoster:
		return "Roster is not for this school year"
	case CodeInvalidInput:
		return "Invalid input"
	case CodePeriodNotScheduled:
		return "Period does not meet that day"
	case CodeStudentNotFound:
		return "Student not found"
	case CodeUnsupportedPlatform:
		return "Unsupported platform"
	case CodeAuditFailed:
		return "Audit log write failed"
	default:
		return "Warning"
	}
}

// Warning is one non-fatal data-quality or input problem.
type Warning struct {
	Code      Code
	Message   string
	Row       int    // roster row, 1-based including header; 0 if n/a
	StudentID string // empty if n/a
}

// New builds a Warning with a formatted message.
func New(code Code, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", Title(w.Code), w.Message)
}

// Log writes w at warn level.
func (w Warning) Log(log zerolog.Logger) {
	ev := log.Warn().Str("code", string(w.Code))
	if w.Row > 0 {
		ev = ev.Int("row", w.Row)
	}
	if w.StudentID != "" {
		ev = ev.Str("student_id", w.StudentID)
	}
	ev.Msg(w.Message)
}
