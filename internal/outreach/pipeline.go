package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/content"
	"peekr-automation/internal/lead"
	"peekr-automation/internal/metrics"
)

// subjectSuffix decorates the outbound subject line; the stored subject
// stays undecorated.
const subjectSuffix = " - Let's Explore"

type LeadStore interface {
	LoadLeads(ctx context.Context) ([]lead.Lead, error)
	SetCell(ctx context.Context, row int, col lead.Column, value string) error
}

type MailSender interface {
	SendHTML(to, subject, htmlBody string) error
}

type Drafter interface {
	OutreachDraft(ctx context.Context, title, category string) (content.Draft, error)
}

// Pipeline sends the first outreach email. It runs two passes over a
// snapshot of the lead rows: a validation pass that derives the single
// authoritative address from the raw email field, then a send pass over the
// reloaded snapshot.
type Pipeline struct {
	store        LeadStore
	drafter      Drafter
	sender       MailSender
	templatePath string
	loc          *time.Location
	updateDelay  time.Duration
	sendDelay    time.Duration
	log          *logrus.Entry
}

func NewPipeline(store LeadStore, drafter Drafter, sender MailSender, templatePath string, loc *time.Location, updateDelay, sendDelay time.Duration, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		store:        store,
		drafter:      drafter,
		sender:       sender,
		templatePath: templatePath,
		loc:          loc,
		updateDelay:  updateDelay,
		sendDelay:    sendDelay,
		log:          log.WithField("component", "outreach"),
	}
}

// Run executes both passes and logs a per-run summary.
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Info("starting outreach campaign")

	validated, err := p.validatePass(ctx)
	if err != nil {
		return err
	}
	p.log.Infof("validation pass complete: %d emails validated", validated)

	sent, skipped, err := p.sendPass(ctx)
	if err != nil {
		return err
	}
	p.log.Infof("outreach complete: sent=%d skipped=%d", sent, skipped)
	return nil
}

// validatePass fills the Valid Email column for waiting rows that still
// carry only raw discovered addresses.
func (p *Pipeline) validatePass(ctx context.Context) (int, error) {
	leads, err := p.store.LoadLeads(ctx)
	if err != nil {
		return 0, fmt.Errorf("validation pass aborted: %w", err)
	}

	validated := 0
	for _, l := range leads {
		if !l.HasStatus(lead.StatusWaiting) || l.ValidEmail != "" || l.Email == "" {
			continue
		}

		best := ExtractBestEmail(l.Email)
		if best == "" {
			p.log.Debugf("no business address in %q (row %d)", l.Email, l.Row)
			continue
		}

		if err := p.store.SetCell(ctx, l.Row, lead.ColValidEmail, best); err != nil {
			p.log.WithError(err).Errorf("failed to store valid email for row %d", l.Row)
			continue
		}
		validated++

		if !sleepCtx(ctx, p.updateDelay) {
			return validated, ctx.Err()
		}
	}
	return validated, nil
}

// sendPass generates, renders and sends one email per validated waiting
// lead. Single failures are logged and skipped; the pass never retries a
// row within the same run.
func (p *Pipeline) sendPass(ctx context.Context) (sent, skipped int, err error) {
	leads, err := p.store.LoadLeads(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("send pass aborted: %w", err)
	}

	for _, l := range leads {
		if l.ValidEmail == "" || !l.HasStatus(lead.StatusWaiting) {
			continue
		}
		if ctx.Err() != nil {
			return sent, skipped, ctx.Err()
		}

		draft, err := p.drafter.OutreachDraft(ctx, l.Title, l.Category)
		if err != nil || draft.Subject == "" || draft.Body == "" {
			p.log.WithError(err).Warnf("no usable draft for %q, skipping row %d", l.Title, l.Row)
			skipped++
			continue
		}

		html := RenderTemplate(p.templatePath, draft, l.Title)
		if err := p.sender.SendHTML(l.ValidEmail, draft.Subject+subjectSuffix, html); err != nil {
			p.log.WithError(err).Errorf("failed to send to %s", l.ValidEmail)
			skipped++
			continue
		}

		p.markSent(ctx, l.Row, draft.Subject)
		metrics.RecordOutreachSent()
		p.log.Infof("outreach sent to %s (%s)", l.ValidEmail, l.Title)
		sent++

		if !sleepCtx(ctx, p.sendDelay) {
			return sent, skipped, ctx.Err()
		}
	}
	return sent, skipped, nil
}

// markSent records status, subject and timestamp. Cell updates are
// independent; a partial failure leaves the row recoverable by hand, so
// each error is only logged.
func (p *Pipeline) markSent(ctx context.Context, row int, subject string) {
	now := time.Now().In(p.loc)
	updates := []struct {
		col   lead.Column
		value string
	}{
		{lead.ColStatus, string(lead.StatusSent)},
		{lead.ColSubject, subject},
		{lead.ColSendDate, now.Format(lead.DateLayout)},
		{lead.ColSendTime, now.Format(lead.TimeLayout)},
	}
	for _, u := range updates {
		if err := p.store.SetCell(ctx, row, u.col, u.value); err != nil {
			p.log.WithError(err).Errorf("failed to update column %d for row %d", u.col, row)
		}
	}
}

// sleepCtx sleeps unless the context ends first; returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
