// Package engine wires the lifecycle automation together: one long-lived
// process running the weekly batch scheduler and the always-on reply
// monitor against the shared lead store.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"peekr-automation/internal/content"
	"peekr-automation/internal/followup"
	"peekr-automation/internal/ingest"
	"peekr-automation/internal/lead"
	"peekr-automation/internal/outreach"
	"peekr-automation/internal/replies"
	"peekr-automation/internal/status"
	"peekr-automation/pkg/apify"
	"peekr-automation/pkg/config"
	"peekr-automation/pkg/imapclient"
	"peekr-automation/pkg/mailer"
	"peekr-automation/pkg/netutil"
	"peekr-automation/pkg/openai"
	"peekr-automation/pkg/sheets"
)

const tickInterval = 20 * time.Second

// Engine owns every component and the initialization order: connectivity
// probe, storage connect, schema check, monitor start, scheduler loop.
type Engine struct {
	cfg      *config.Config
	log      *logrus.Logger
	loc      *time.Location
	store    *lead.Store
	monitor  *replies.Monitor
	ingest   *ingest.Pipeline
	outreach *outreach.Pipeline
	followup *followup.Runner
	statusz  *status.Server
	schedule []Entry
	running  atomic.Bool
}

// imapDialer adapts the concrete session type to the monitor's interface.
type imapDialer struct {
	d imapclient.Dialer
}

func (a imapDialer) Dial() (replies.MailboxSession, error) {
	return a.d.Dial()
}

// New builds the engine. Any error here is fatal configuration: the process
// must not start with a broken store connection or a drifted schema.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Engine, error) {
	if !netutil.ProbeConnectivity() {
		return nil, fmt.Errorf("no internet connectivity detected")
	}

	creds, err := cfg.DecodeGoogleCredentials()
	if err != nil {
		return nil, err
	}

	// the sheets bootstrap gets retries; routine calls later do not, so a
	// persistent outage is never masked as transient
	var client *sheets.Client
	err = netutil.Retry(ctx, log, 3, func() error {
		var dialErr error
		client, dialErr = sheets.NewClient(ctx, creds, cfg.SpreadsheetID)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lead store: %w", err)
	}
	log.Info("lead store connection established")

	store := lead.NewStore(client, cfg.LeadsWorksheet, cfg.CategoriesWorksheet, log)
	if err := store.VerifySchema(ctx); err != nil {
		return nil, fmt.Errorf("lead store schema check failed: %w", err)
	}

	loc := cfg.Location()
	generator := content.NewGenerator(
		openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		content.NewPrompts(cfg.PromptsDir),
		log,
	)
	sender := mailer.NewSender(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailAccount, cfg.EmailPassword, cfg.SenderName)
	dialer := imapDialer{d: imapclient.Dialer{
		Addr:     fmt.Sprintf("%s:%d", cfg.IMAPServer, cfg.IMAPPort),
		Username: cfg.EmailAccount,
		Password: cfg.EmailPassword,
	}}

	e := &Engine{
		cfg:   cfg,
		log:   log,
		loc:   loc,
		store: store,
		ingest: ingest.NewPipeline(
			store,
			apify.NewClient(cfg.ApifyAPIKey),
			cfg.TargetLeads, cfg.LeadsPerSearch, cfg.SearchDelay,
			log,
		),
		outreach: outreach.NewPipeline(
			store, generator, sender,
			cfg.TemplatePath, loc, cfg.SheetUpdateDelay, cfg.SendDelay,
			log,
		),
		followup: followup.NewRunner(
			store, generator, sender,
			followup.NewSelector(cfg.MaxFollowups, cfg.NonResponderDays, cfg.NotInterestedDays),
			loc, cfg.FollowupSendDelay,
			log,
		),
		monitor: replies.NewMonitor(dialer, store, generator, sender, replies.Options{
			Host:           cfg.IMAPServer,
			PollInterval:   cfg.PollInterval,
			ReportInterval: cfg.ReportInterval,
			MinWorkers:     cfg.MinWorkers,
			MaxWorkers:     cfg.MaxWorkers,
			LeadsPerWorker: cfg.LeadsPerWorker,
			QueueSize:      cfg.QueueSize,
			Location:       loc,
		}, log),
	}

	if cfg.StatusPort != "" {
		e.statusz = status.NewServer(cfg.StatusPort, e.monitor, log)
	}

	e.schedule = []Entry{
		{Name: "lead-generation", Weekday: time.Sunday, At: "00:00", Run: e.ingest.Run},
		{Name: "lead-generation", Weekday: time.Wednesday, At: "00:00", Run: e.ingest.Run},
		{Name: "email-outreach", Weekday: time.Tuesday, At: "08:00", Run: e.outreach.Run},
		{Name: "email-outreach", Weekday: time.Thursday, At: "08:00", Run: e.outreach.Run},
		{Name: "follow-up", Weekday: time.Monday, At: "08:00", Run: e.followup.Run},
	}

	return e, nil
}

// Run starts the monitor and blocks in the scheduler tick loop until the
// context ends. Batch jobs fire synchronously on the tick goroutine, so
// they can never overlap each other; the reply monitor runs concurrently
// throughout.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)

	if err := e.monitor.Start(ctx); err != nil {
		return err
	}
	if e.statusz != nil {
		e.statusz.Start()
	}

	for _, entry := range e.schedule {
		e.log.Infof("scheduled %s: %s %s %s", entry.Name, entry.Weekday, entry.At, e.loc)
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	fired := make(map[string]time.Time)
	for e.running.Load() {
		select {
		case <-ctx.Done():
			e.Stop()
			return nil
		case <-ticker.C:
			e.tick(ctx, time.Now().In(e.loc), fired)
		}
	}
	return nil
}

func (e *Engine) tick(ctx context.Context, now time.Time, fired map[string]time.Time) {
	for _, entry := range e.schedule {
		if !entry.due(now) {
			continue
		}
		key := entry.fireKey(now)
		if _, done := fired[key]; done {
			continue
		}
		fired[key] = now

		e.log.Infof("firing scheduled job %s", entry.Name)
		if err := entry.Run(ctx); err != nil {
			e.log.WithError(err).Errorf("scheduled job %s failed", entry.Name)
		}
	}

	// keep the dedupe map from growing with process uptime
	for key, at := range fired {
		if now.Sub(at) > 48*time.Hour {
			delete(fired, key)
		}
	}
}

// Stop flips the running flag and joins the monitor's workers. An in-flight
// batch job finishes its current external call before the flag is observed.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	e.log.Info("stopping automation engine")
	e.monitor.Stop()
	if e.statusz != nil {
		e.statusz.Shutdown()
	}
}
