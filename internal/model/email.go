package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is the operator-entered part of every email.
type Message struct {
	Subject    string
	Body       string
	OnBehalfOf string
	Footer     string
}

// RenderedEmail is ready to be handed to the mail client.
type RenderedEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// Summary is the per-email console line, e.g. "Period 1(2) Period 3(1) ".
	Summary string
}

// SendRecord is one row of the sent-email audit log.
type SendRecord struct {
	RunID     uuid.UUID
	Recipient string
	Subject   string
	Test      bool
	SentAt    time.Time
}
