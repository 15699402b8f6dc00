package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/lead"
	"peekr-automation/internal/metrics"
)

type LeadStore interface {
	LoadLeads(ctx context.Context) ([]lead.Lead, error)
	SetCell(ctx context.Context, row int, col lead.Column, value string) error
}

type MailSender interface {
	SendHTML(to, subject, htmlBody string) error
}

// Drafter generates the two follow-up body variants.
type Drafter interface {
	FollowupBody(ctx context.Context, title, category, website string) (string, error)
	NotInterestedFollowupBody(ctx context.Context, followupNumber int) (string, error)
}

// Runner executes one follow-up campaign: select, send, track.
type Runner struct {
	store     LeadStore
	drafter   Drafter
	sender    MailSender
	selector  *Selector
	loc       *time.Location
	sendDelay time.Duration
	log       *logrus.Entry
}

func NewRunner(store LeadStore, drafter Drafter, sender MailSender, selector *Selector, loc *time.Location, sendDelay time.Duration, log *logrus.Logger) *Runner {
	return &Runner{
		store:     store,
		drafter:   drafter,
		sender:    sender,
		selector:  selector,
		loc:       loc,
		sendDelay: sendDelay,
		log:       log.WithField("component", "followup"),
	}
}

// Run selects candidates from a fresh snapshot and processes each one
// independently; a single failure never stops the campaign.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("starting follow-up campaign")

	leads, err := r.store.LoadLeads(ctx)
	if err != nil {
		return fmt.Errorf("follow-up campaign aborted: %w", err)
	}

	candidates := r.selector.Candidates(leads, time.Now().In(r.loc))
	if len(candidates) == 0 {
		r.log.Info("no follow-ups due")
		return nil
	}
	r.log.Infof("found %d follow-up candidates", len(candidates))

	sent := 0
	for _, c := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if r.sendOne(ctx, c) {
			sent++
		}

		select {
		case <-time.After(r.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.log.Infof("follow-up campaign complete: sent %d/%d", sent, len(candidates))
	return nil
}

func (r *Runner) sendOne(ctx context.Context, c Candidate) bool {
	var body, subject string
	var err error

	switch c.Type {
	case TypeNonResponder:
		body, err = r.drafter.FollowupBody(ctx, c.Title, c.Category, c.Website)
		subject = fmt.Sprintf("Following up - %s", c.Title)
	default:
		body, err = r.drafter.NotInterestedFollowupBody(ctx, c.Count+1)
		subject = fmt.Sprintf("Re: Following up - %s", c.Title)
	}
	if err != nil {
		metrics.RecordCollaboratorError("generation")
		r.log.WithError(err).Errorf("failed to draft follow-up for %s", c.Email)
		return false
	}

	if err := r.sender.SendHTML(c.Email, subject, body); err != nil {
		r.log.WithError(err).Errorf("failed to send follow-up to %s", c.Email)
		return false
	}

	r.track(ctx, c)
	metrics.RecordFollowupSent(string(c.Type))
	r.log.Infof("follow-up %d/%d sent to %s (%s)", c.Count+1, r.selector.maxFollowups, c.Email, c.Type)
	return true
}

// track bumps the counter, stamps the date, and writes the human-readable
// status label. Only successful sends are tracked; a failed send leaves the
// lead eligible for the next campaign.
func (r *Runner) track(ctx context.Context, c Candidate) {
	newCount := c.Count + 1
	today := time.Now().In(r.loc).Format(lead.DateLayout)

	label := fmt.Sprintf("Follow-up Sent (%d/%d)", newCount, r.selector.maxFollowups)
	if newCount >= r.selector.maxFollowups {
		label = fmt.Sprintf("Follow-up Complete (%d/%d)", newCount, r.selector.maxFollowups)
	}

	updates := []struct {
		col   lead.Column
		value string
	}{
		{lead.ColFollowupCount, fmt.Sprintf("%d", newCount)},
		{lead.ColLastFollowupDate, today},
		{lead.ColFollowupStatus, label},
	}
	for _, u := range updates {
		if err := r.store.SetCell(ctx, c.Row, u.col, u.value); err != nil {
			r.log.WithError(err).Errorf("failed to update follow-up tracking for row %d", c.Row)
		}
	}
}
