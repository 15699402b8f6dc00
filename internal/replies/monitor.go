// Package replies watches the mailbox for inbound replies and answers them.
// A single producer polls for unseen messages and fans envelopes out to a
// bounded worker pool; every unit of work opens its own mailbox session.
package replies

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/lead"
	"peekr-automation/internal/metrics"
)

// Envelope is the lightweight descriptor queued between the poll loop and
// the workers. It is never persisted: if the process dies mid-queue the
// underlying message is still unread and reappears on the next poll.
type Envelope struct {
	ID      uint32
	Sender  string
	Subject string
}

// MailboxSession is one authenticated, INBOX-selected connection.
type MailboxSession interface {
	SearchUnseen() ([]uint32, error)
	FetchEnvelope(id uint32) (sender, subject string, err error)
	FetchBody(id uint32) (string, error)
	MarkSeen(id uint32) error
	Close() error
}

// MailboxDialer opens short-lived sessions. The producer and each worker
// dial independently; sessions are never shared across goroutines.
type MailboxDialer interface {
	Dial() (MailboxSession, error)
}

type LeadStore interface {
	LoadLeads(ctx context.Context) ([]lead.Lead, error)
	SetCell(ctx context.Context, row int, col lead.Column, value string) error
}

type MailSender interface {
	SendHTML(to, subject, htmlBody string) error
}

// Classifier drafts the classification and the answer.
type Classifier interface {
	Classify(ctx context.Context, replyBody string) (string, error)
	ReplyBody(ctx context.Context, replyBody, classification string) (string, error)
}

const (
	replyTruncateLimit = 500
	workerIdleTimeout  = 5 * time.Second
	errorQuietWindow   = 5 * time.Minute
	baseErrorSleep     = 10 * time.Second
	errorSleepStep     = 2 * time.Second
	maxErrorSleep      = 60 * time.Second
)

// Options groups the monitor's tunables.
type Options struct {
	Host           string // mail host, used for the DNS pre-check
	PollInterval   time.Duration
	ReportInterval time.Duration
	MinWorkers     int
	MaxWorkers     int
	LeadsPerWorker int
	QueueSize      int
	Location       *time.Location
}

// Monitor is the reply-monitoring state machine.
type Monitor struct {
	dialer MailboxDialer
	store  LeadStore
	gen    Classifier
	sender MailSender
	opts   Options

	// injectable for tests
	lookupHost func(host string) ([]string, error)

	queue   chan Envelope
	valid   atomic.Value // map[string]struct{}, replaced wholesale on reload
	running atomic.Bool
	wg      sync.WaitGroup
	workers int

	stats Stats
	log   *logrus.Entry
}

func NewMonitor(dialer MailboxDialer, store LeadStore, gen Classifier, sender MailSender, opts Options, log *logrus.Logger) *Monitor {
	m := &Monitor{
		dialer:     dialer,
		store:      store,
		gen:        gen,
		sender:     sender,
		opts:       opts,
		lookupHost: net.LookupHost,
		queue:      make(chan Envelope, opts.QueueSize),
		log:        log.WithField("component", "replies"),
	}
	m.valid.Store(map[string]struct{}{})
	return m
}

// Start loads the valid-address set, sizes the pool, and launches the
// producer and workers. Failing the initial address load is fatal: without
// it every inbound message would be ignored.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.reloadValidAddresses(ctx); err != nil {
		return fmt.Errorf("reply monitor cannot start: %w", err)
	}

	m.stats.start = time.Now()
	m.running.Store(true)

	m.workers = workerCount(len(m.validAddresses()), m.opts.LeadsPerWorker, m.opts.MinWorkers, m.opts.MaxWorkers)
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx, i)
	}

	m.wg.Add(1)
	go m.pollLoop(ctx)

	m.log.Infof("reply monitoring started: %d workers, %d known addresses", m.workers, len(m.validAddresses()))
	return nil
}

// Stop flips the running flag and waits for the producer and workers to
// observe it at their next loop boundary. In-flight work completes; there
// is no hard preemption.
func (m *Monitor) Stop() {
	m.running.Store(false)
	m.wg.Wait()
	m.log.Info("reply monitoring stopped")
}

// pollLoop is the producer. Connection errors never terminate it: the loop
// backs off with a capped, increasing sleep and logs at most once per quiet
// window until connectivity returns.
func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	consecutiveErrors := 0
	lastReport := time.Now()
	lastErrorLog := time.Now().Add(-2 * errorQuietWindow)

	for m.running.Load() && ctx.Err() == nil {
		queued, err := m.pollOnce(ctx)
		if err != nil {
			consecutiveErrors++
			metrics.RecordMonitorError()
			m.stats.errors.Add(1)

			if time.Since(lastErrorLog) > errorQuietWindow {
				m.log.WithError(err).Warnf("mailbox unreachable (%d consecutive errors), monitoring continues", consecutiveErrors)
				lastErrorLog = time.Now()
			}
			m.sleep(ctx, pollErrorSleep(consecutiveErrors))
			continue
		}
		consecutiveErrors = 0

		if queued > 0 {
			m.log.Infof("queued %d new replies", queued)
		}
		metrics.SetQueueDepth(len(m.queue))

		if time.Since(lastReport) > m.opts.ReportInterval {
			m.report()
			if err := m.reloadValidAddresses(ctx); err != nil {
				m.log.WithError(err).Warn("failed to reload valid addresses")
			}
			lastReport = time.Now()
		}

		m.sleep(ctx, m.opts.PollInterval)
	}
}

// pollOnce checks the mailbox for unseen messages from known senders and
// queues an envelope for each. A failed DNS resolution skips the cycle
// silently; there is nothing actionable to log every few seconds.
func (m *Monitor) pollOnce(ctx context.Context) (int, error) {
	if _, err := m.lookupHost(m.opts.Host); err != nil {
		return 0, nil
	}

	session, err := m.dialer.Dial()
	if err != nil {
		return 0, err
	}
	defer session.Close()

	ids, err := session.SearchUnseen()
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		sender, subject, err := session.FetchEnvelope(id)
		if err != nil {
			m.log.WithError(err).Debugf("failed to fetch envelope %d", id)
			continue
		}
		if !m.knownSender(sender) {
			continue
		}

		select {
		case m.queue <- Envelope{ID: id, Sender: sender, Subject: subject}:
			queued++
		default:
			// queue full; the message stays unread and is picked up on a
			// later cycle
			m.log.Warnf("reply queue full, deferring message %d", id)
		}
	}
	return queued, nil
}

// reloadValidAddresses rebuilds the known-sender set from the lead store.
// The whole map is replaced atomically, which is the only synchronization
// the reader side needs.
func (m *Monitor) reloadValidAddresses(ctx context.Context) error {
	leads, err := m.store.LoadLeads(ctx)
	if err != nil {
		return err
	}

	set := make(map[string]struct{})
	for _, l := range leads {
		addr := normalizeAddr(l.ValidEmail)
		if addr != "" {
			set[addr] = struct{}{}
		}
	}
	m.valid.Store(set)
	m.log.Debugf("loaded %d valid addresses for monitoring", len(set))
	return nil
}

func (m *Monitor) validAddresses() map[string]struct{} {
	return m.valid.Load().(map[string]struct{})
}

func (m *Monitor) knownSender(addr string) bool {
	_, ok := m.validAddresses()[normalizeAddr(addr)]
	return ok
}

func (m *Monitor) report() {
	m.log.WithFields(logrus.Fields{
		"uptime":    time.Since(m.stats.start).Round(time.Second).String(),
		"processed": m.stats.processed.Load(),
		"replies":   m.stats.repliesSent.Load(),
		"errors":    m.stats.errors.Load(),
		"queued":    len(m.queue),
	}).Info("reply monitoring stats")
}

func (m *Monitor) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// pollErrorSleep grows linearly with the consecutive error count and caps
// out, so a long outage settles into a slow, quiet retry cadence.
func pollErrorSleep(consecutiveErrors int) time.Duration {
	d := baseErrorSleep + time.Duration(consecutiveErrors)*errorSleepStep
	if d > maxErrorSleep {
		return maxErrorSleep
	}
	return d
}

// workerCount scales the pool with the monitored address count, clamped to
// the configured bounds.
func workerCount(addresses, perWorker, min, max int) int {
	if perWorker <= 0 {
		perWorker = 1
	}
	n := addresses / perWorker
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
