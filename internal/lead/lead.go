// Package lead holds the Lead record, the versioned worksheet schema, and
// the typed store facade every pipeline reads and writes through.
package lead

import (
	"strings"
	"time"
)

// Status is the campaign status stored in the Status column.
type Status string

const (
	StatusWaiting Status = "Waiting"
	StatusSent    Status = "Sent"
)

// Reply classifications written to the Reply Received column.
const (
	ClassInterested    = "INTERESTED"
	ClassNotInterested = "NOT INTERESTED"
)

// DateLayout is the wire format for every date column.
const DateLayout = "2006-01-02"

const TimeLayout = "15:04:05"

// MarkYes is the flag value of the Mail Received / Mail Reply Sent columns.
const MarkYes = "YES"

// Lead is the unit of work and the only persistent entity. Row is the
// absolute worksheet row number (the header is row 1, so the first lead
// lives at row 2).
type Lead struct {
	Row int

	Title      string
	Website    string
	Email      string // raw discovered email(s), possibly comma-separated
	ValidEmail string // at most one authoritative address
	Location   string
	Domain     string
	Phone      string
	Category   string

	SendDate string
	SendTime string
	Subject  string
	Status   Status

	MailReceived  string
	ReplyMessage  string
	MailReplySent string
	Response      string
	FollowUp      string

	FollowupCount    int
	LastFollowupDate string
	FollowupStatus   string

	ReplyReceived string // classification
	ReplyDate     string
}

// HasStatus compares case-insensitively; operators edit the sheet by hand
// and casing drifts.
func (l *Lead) HasStatus(s Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(l.Status)), string(s))
}

// ParseDate parses a date column value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
