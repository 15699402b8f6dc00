// Package followup selects leads eligible for a bounded follow-up sequence
// and sends the next nudge.
package followup

import (
	"strings"
	"time"

	"peekr-automation/internal/lead"
)

// Type is the eligibility branch that produced a candidate.
type Type string

const (
	TypeNonResponder  Type = "NON_RESPONDER"
	TypeNotInterested Type = "NOT_INTERESTED"
)

// Candidate is an ephemeral projection of a lead due for a follow-up; it is
// produced once per selector run and discarded after the send attempt.
type Candidate struct {
	Row      int
	Email    string
	Title    string
	Category string
	Website  string
	Count    int
	Type     Type
}

// Selector applies the temporal eligibility policy.
type Selector struct {
	maxFollowups      int
	nonResponderDays  int
	notInterestedDays int
}

func NewSelector(maxFollowups, nonResponderDays, notInterestedDays int) *Selector {
	return &Selector{
		maxFollowups:      maxFollowups,
		nonResponderDays:  nonResponderDays,
		notInterestedDays: notInterestedDays,
	}
}

// Candidates returns every eligible lead at the given instant. The two
// branches are mutually exclusive and the follow-up counter is a hard
// ceiling: once it reaches the cap a lead is never returned again.
func (s *Selector) Candidates(leads []lead.Lead, now time.Time) []Candidate {
	var out []Candidate
	for _, l := range leads {
		if c, ok := s.eligible(l, now); ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selector) eligible(l lead.Lead, now time.Time) (Candidate, bool) {
	email := strings.ToLower(strings.TrimSpace(l.ValidEmail))
	if email == "" || l.FollowupCount >= s.maxFollowups {
		return Candidate{}, false
	}

	var followupType Type
	switch {
	case s.isNonResponder(l, now):
		followupType = TypeNonResponder
	case s.isNotInterested(l, now):
		followupType = TypeNotInterested
	default:
		return Candidate{}, false
	}

	return Candidate{
		Row:      l.Row,
		Email:    email,
		Title:    l.Title,
		Category: l.Category,
		Website:  l.Website,
		Count:    l.FollowupCount,
		Type:     followupType,
	}, true
}

// isNonResponder: outreach sent, nothing ever came back, and the quiet
// period has elapsed since the send (first follow-up) or since the last
// follow-up (later ones).
func (s *Selector) isNonResponder(l lead.Lead, now time.Time) bool {
	if l.ReplyMessage != "" || !l.HasStatus(lead.StatusSent) || l.MailReceived == lead.MarkYes {
		return false
	}

	if l.FollowupCount == 0 {
		return daysElapsed(l.SendDate, s.nonResponderDays, now)
	}
	return daysElapsed(l.LastFollowupDate, s.nonResponderDays, now)
}

// isNotInterested: the reply was classified NOT INTERESTED and the longer
// quiet period has elapsed since the reply or the last follow-up.
func (s *Selector) isNotInterested(l lead.Lead, now time.Time) bool {
	if !strings.Contains(strings.ToUpper(l.ReplyReceived), lead.ClassNotInterested) {
		return false
	}

	if l.FollowupCount == 0 {
		return daysElapsed(l.ReplyDate, s.notInterestedDays, now)
	}
	return daysElapsed(l.LastFollowupDate, s.notInterestedDays, now)
}

// daysElapsed reports whether now is on or after dateStr plus the given
// number of days. Missing or unparsable dates fail closed: a lead without a
// usable anchor date is skipped, never followed up early.
func daysElapsed(dateStr string, days int, now time.Time) bool {
	if dateStr == "" {
		return false
	}
	anchor, err := lead.ParseDate(dateStr)
	if err != nil {
		return false
	}
	// compare calendar dates so eligibility flips at local midnight, not at
	// some UTC-offset hour of the day
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !nowDate.Before(anchor.AddDate(0, 0, days))
}
