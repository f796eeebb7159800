package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"deal-search/metrics"
	"deal-search/models"
	"deal-search/sources"
	"deal-search/utils"
)

// ListingSource loads every listing one upstream offers in a single call.
type ListingSource interface {
	Source() models.Source
	Listings(ctx context.Context) ([]models.Listing, error)
}

// SearchService runs the aggregate, filter, rank and project pipeline over the
// deals and feed sources. It holds no per-request state.
type SearchService struct {
	deals   ListingSource
	feed    ListingSource
	metrics *metrics.Registry
	logger  *utils.Logger
}

// NewSearchService creates a SearchService. m may be nil.
func NewSearchService(deals, feed ListingSource, m *metrics.Registry, logger *utils.Logger) *SearchService {
	return &SearchService{deals: deals, feed: feed, metrics: m, logger: logger}
}

// Search fetches both sources concurrently and returns at most MaxResults
// ranked listings matching query. A failure in either source fails the search.
func (s *SearchService) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	var deals, feed []models.Listing

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.load(gctx, s.deals)
		return err
	})
	g.Go(func() error {
		var err error
		feed, err = s.load(gctx, s.feed)
		return err
	})
	if err := g.Wait(); err != nil {
		s.observeSearch(outcomeOf(err), 0)
		return nil, err
	}

	all := Aggregate(deals, feed)
	matched := Filter(query, all)
	resp := Project(Rank(matched))

	s.logger.Info("[search] query=%q deals=%d feed=%d matched=%d returned=%d",
		query, len(deals), len(feed), len(matched), len(resp.Results))
	s.observeSearch(metrics.OutcomeOK, len(resp.Results))
	return resp, nil
}

func (s *SearchService) load(ctx context.Context, src ListingSource) ([]models.Listing, error) {
	start := time.Now()
	listings, err := src.Listings(ctx)
	elapsed := time.Since(start)

	if s.metrics != nil {
		name := string(src.Source())
		s.metrics.UpstreamLatency.WithLabelValues(name).Observe(elapsed.Seconds())
		s.metrics.UpstreamFetch.WithLabelValues(name, outcomeOf(err)).Inc()
	}

	if err != nil {
		s.logger.Error("[search] %s source failed after %v: %v", src.Source(), elapsed, err)
		return nil, fmt.Errorf("load %s listings: %w", src.Source(), err)
	}
	s.logger.Debug("[search] %s source returned %d listings in %v", src.Source(), len(listings), elapsed)
	return listings, nil
}

func (s *SearchService) observeSearch(outcome string, results int) {
	if s.metrics == nil {
		return
	}
	s.metrics.Searches.WithLabelValues(outcome).Inc()
	if outcome == metrics.OutcomeOK {
		s.metrics.SearchResults.Observe(float64(results))
	}
}

func outcomeOf(err error) string {
	var fe *sources.FetchError
	var pe *sources.ParseError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &fe):
		return metrics.OutcomeFetchError
	case errors.As(err, &pe):
		return metrics.OutcomeParseError
	default:
		return metrics.OutcomeError
	}
}
