package replies

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/lead"
	"peekr-automation/internal/metrics"
)

// worker consumes envelopes until the monitor stops. Blocking on the queue
// uses a timeout so the running flag is observed promptly.
func (m *Monitor) worker(ctx context.Context, id int) {
	defer m.wg.Done()

	for m.running.Load() {
		select {
		case env := <-m.queue:
			m.process(ctx, env)
			metrics.SetQueueDepth(len(m.queue))
		case <-time.After(workerIdleTimeout):
		case <-ctx.Done():
			return
		}
	}
}

// process handles one inbound reply end to end: fetch, classify, answer,
// record. The message is marked read only after the answer went out; any
// earlier failure leaves it unread so the next poll cycle retries it. That
// is a deliberate at-least-once choice: a rare duplicate answer beats
// silently dropping a lead's reply.
func (m *Monitor) process(ctx context.Context, env Envelope) {
	log := m.log.WithField("sender", env.Sender)

	session, err := m.dialer.Dial()
	if err != nil {
		m.countError(log, err, "failed to open mailbox session")
		return
	}
	defer session.Close()

	body, err := session.FetchBody(env.ID)
	if err != nil {
		m.countError(log, err, "failed to fetch message")
		return
	}
	if strings.TrimSpace(body) == "" {
		// nothing to classify; retrying an empty message forever would just
		// poison the queue
		if err := session.MarkSeen(env.ID); err != nil {
			log.WithError(err).Debug("failed to mark empty message read")
		}
		return
	}

	log.Info("processing reply")

	classification, err := m.gen.Classify(ctx, body)
	if err != nil {
		metrics.RecordCollaboratorError("generation")
		m.countError(log, err, "classification failed, message stays unread")
		return
	}
	log.Infof("classified as %s", classification)

	answer, err := m.gen.ReplyBody(ctx, body, classification)
	if err != nil {
		metrics.RecordCollaboratorError("generation")
		m.countError(log, err, "reply drafting failed, message stays unread")
		return
	}

	subject := "Thank you for your response"
	if env.Subject != "" {
		subject = "Re: " + env.Subject
	}
	if err := m.sender.SendHTML(env.Sender, subject, answer); err != nil {
		m.countError(log, err, "reply send failed, message stays unread")
		return
	}

	m.stats.repliesSent.Add(1)
	metrics.RecordReplySent(classification)

	if err := m.recordReply(ctx, env.Sender, classification, body); err != nil {
		log.WithError(err).Error("reply sent but lead row not updated")
	}

	if err := session.MarkSeen(env.ID); err != nil {
		log.WithError(err).Warn("failed to mark message read, it may be answered again")
	}

	m.stats.processed.Add(1)
	metrics.RecordReplyProcessed()
	log.Info("reply handled")
}

// recordReply finds the lead by validated address (linear scan over a fresh
// snapshot) and writes the reply tracking columns.
func (m *Monitor) recordReply(ctx context.Context, sender, classification, body string) error {
	leads, err := m.store.LoadLeads(ctx)
	if err != nil {
		return err
	}

	sender = normalizeAddr(sender)
	for _, l := range leads {
		if normalizeAddr(l.ValidEmail) != sender {
			continue
		}

		today := time.Now().In(m.opts.Location).Format(lead.DateLayout)
		updates := []struct {
			col   lead.Column
			value string
		}{
			{lead.ColMailReceived, lead.MarkYes},
			{lead.ColReplyMessage, truncate(body, replyTruncateLimit)},
			{lead.ColMailReplySent, lead.MarkYes},
			{lead.ColReplyReceived, classification},
			{lead.ColReplyDate, today},
		}
		for _, u := range updates {
			if err := m.store.SetCell(ctx, l.Row, u.col, u.value); err != nil {
				m.log.WithError(err).Errorf("failed to update column %d for row %d", u.col, l.Row)
			}
		}
		return nil
	}

	m.log.Debugf("no lead row matches %s", sender)
	return nil
}

func (m *Monitor) countError(log *logrus.Entry, err error, msg string) {
	m.stats.errors.Add(1)
	metrics.RecordMonitorError()
	log.WithError(err).Error(msg)
}

func normalizeAddr(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !strings.Contains(addr, "@") {
		return ""
	}
	return addr
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
