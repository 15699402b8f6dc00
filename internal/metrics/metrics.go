// Package metrics exposes the engine's prometheus instruments. Counters are
// package-level via promauto, so pipelines record without carrying a handle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_ingested_total",
		Help: "New leads appended to the lead store",
	})

	leadsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_deduplicated_total",
		Help: "Discovered candidates rejected by the identity cache",
	})

	outreachSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outreach_emails_sent_total",
		Help: "First-touch outreach emails sent",
	})

	followupsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "followup_emails_sent_total",
		Help: "Follow-up emails sent",
	}, []string{"type"})

	repliesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replies_processed_total",
		Help: "Inbound replies fully processed by a worker",
	})

	repliesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replies_sent_total",
		Help: "Automated answers sent to inbound replies",
	}, []string{"classification"})

	monitorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reply_monitor_errors_total",
		Help: "Errors in the reply monitor poll loop and workers",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reply_queue_depth",
		Help: "Envelopes waiting for a worker",
	})

	collaboratorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collaborator_errors_total",
		Help: "Failed calls to external collaborators",
	}, []string{"service"})
)

func RecordLeadsIngested(n int)    { leadsIngested.Add(float64(n)) }
func RecordLeadDeduplicated()      { leadsDeduplicated.Inc() }
func RecordOutreachSent()          { outreachSent.Inc() }
func RecordFollowupSent(t string)  { followupsSent.WithLabelValues(t).Inc() }
func RecordReplyProcessed()        { repliesProcessed.Inc() }
func RecordReplySent(class string) { repliesSent.WithLabelValues(class).Inc() }
func RecordMonitorError()          { monitorErrors.Inc() }
func SetQueueDepth(n int)          { queueDepth.Set(float64(n)) }

func RecordCollaboratorError(service string) {
	collaboratorErrors.WithLabelValues(service).Inc()
}
