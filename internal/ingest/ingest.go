// Package ingest discovers new prospects and persists the ones the identity
// cache has never seen.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"peekr-automation/internal/dedup"
	"peekr-automation/internal/lead"
	"peekr-automation/internal/metrics"
	"peekr-automation/pkg/apify"
)

const minTitleLength = 3

// Discovery is the prospect-discovery collaborator.
type Discovery interface {
	SearchPlaces(ctx context.Context, location, category string, maxResults int) ([]apify.Place, error)
}

type LeadStore interface {
	LoadLeads(ctx context.Context) ([]lead.Lead, error)
	AppendLeads(ctx context.Context, leads []lead.Lead) error
	LoadSearchTerms(ctx context.Context) ([]lead.SearchTerm, error)
}

// Pipeline runs one deduplicating ingest batch: discovery, identity-cache
// filter, normalization, batch append.
type Pipeline struct {
	store       LeadStore
	discovery   Discovery
	targetLeads int
	perSearch   int
	searchDelay time.Duration
	log         *logrus.Entry
}

func NewPipeline(store LeadStore, discovery Discovery, targetLeads, perSearch int, searchDelay time.Duration, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		store:       store,
		discovery:   discovery,
		targetLeads: targetLeads,
		perSearch:   perSearch,
		searchDelay: searchDelay,
		log:         log.WithField("component", "ingest"),
	}
}

// Run executes one ingest batch. Failing to load the existing leads or the
// search terms aborts the run (deduplication would be unsafe without them);
// a single failed search logs and moves on.
func (p *Pipeline) Run(ctx context.Context) error {
	runLog := p.log.WithField("run", uuid.NewString()[:8])
	runLog.Infof("starting lead generation (target %d)", p.targetLeads)

	existing, err := p.store.LoadLeads(ctx)
	if err != nil {
		return fmt.Errorf("ingest aborted, cannot load existing leads: %w", err)
	}

	cache := dedup.New()
	cache.Warm(existing)
	runLog.Infof("identity cache warmed with %d hashes from %d leads", cache.Len(), len(existing))

	terms, err := p.store.LoadSearchTerms(ctx)
	if err != nil {
		return fmt.Errorf("ingest aborted, cannot load search terms: %w", err)
	}
	if len(terms) == 0 {
		return fmt.Errorf("ingest aborted: no search terms configured")
	}

	total := 0
	for _, term := range terms {
		if total >= p.targetLeads {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		runLog.Infof("searching %q in %q (max %d)", term.Category, term.Location, p.perSearch)
		places, err := p.discovery.SearchPlaces(ctx, term.Location, term.Category, p.perSearch)
		if err != nil {
			metrics.RecordCollaboratorError("discovery")
			runLog.WithError(err).Errorf("discovery failed for %q in %q", term.Category, term.Location)
			continue
		}

		accepted := p.filter(places, term, cache)
		if len(accepted) > 0 {
			if err := p.store.AppendLeads(ctx, accepted); err != nil {
				runLog.WithError(err).Error("failed to persist batch")
				continue
			}
			total += len(accepted)
			metrics.RecordLeadsIngested(len(accepted))
		}
		runLog.Infof("progress: %d/%d leads", total, p.targetLeads)

		if !sleepCtx(ctx, p.searchDelay) {
			return ctx.Err()
		}
	}

	runLog.Infof("lead generation complete: %d new leads", total)
	return nil
}

// filter rejects duplicates and junk records and normalizes the rest into
// waiting leads. Rejected candidates are registered in the cache too, so
// they cannot be rediscovered by a later search in the same run.
func (p *Pipeline) filter(places []apify.Place, term lead.SearchTerm, cache *dedup.Cache) []lead.Lead {
	accepted := make([]lead.Lead, 0, len(places))
	for i := range places {
		place := &places[i]

		if cache.Seen(place.Title, place.Website, place.PhoneNumber()) {
			metrics.RecordLeadDeduplicated()
			continue
		}
		if len(place.Title) < minTitleLength {
			continue
		}

		location := place.Address
		if location == "" {
			location = term.Location
		}

		accepted = append(accepted, lead.Lead{
			Title:      place.Title,
			Website:    place.Website,
			Email:      place.EmailField(),
			Location:   location,
			Phone:      place.PhoneNumber(),
			Category:   term.Category,
			Status:     lead.StatusWaiting,
		})
	}
	return accepted
}

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
