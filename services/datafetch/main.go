package datafetch

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/metrics"
	"github.com/fulltiltgenomics/genetics-results-api/services/resources"
)

type (
	// Source is one queryable resource of a category.
	Source interface {
		ID() string
		Resources() []string
		Identity() string
		FetchVariants(ctx context.Context, variants []variant.Variant) (resources.Records, error)
		FetchRanges(ctx context.Context, regions []tabix.Region) (resources.Records, error)
	}

	// Fetcher fans a query out over every source of one category and merges
	// whatever comes back. A failing source is logged and left out.
	Fetcher struct {
		Category constants.Category

		sources []Source
		limit   int
		metrics *metrics.Metrics
	}

	fetchFunc func(ctx context.Context, s Source) (resources.Records, error)
)

// NewFetcher keeps the sources in configuration order. limit caps the number
// of concurrent source queries; zero means no cap.
func NewFetcher(cat constants.Category, sources []Source, limit int, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		Category: cat,
		sources:  sources,
		limit:    limit,
		metrics:  m,
	}
}

// Sources converts adapters to the Source interface.
func Sources(adapters []*resources.Adapter) []Source {
	out := make([]Source, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a)
	}
	return out
}

// Identities lists the identity of every source, in configuration order.
func (f *Fetcher) Identities() []string {
	ids := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		ids = append(ids, s.ID()+"="+s.Identity())
	}
	return ids
}

// Lookup finds a source by resource id.
func (f *Fetcher) Lookup(id string) (Source, bool) {
	for _, s := range f.sources {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

func (f *Fetcher) FetchVariants(ctx context.Context, variants []variant.Variant) models.CategoryResult {
	return f.run(ctx, func(ctx context.Context, s Source) (resources.Records, error) {
		return s.FetchVariants(ctx, variants)
	})
}

func (f *Fetcher) FetchRanges(ctx context.Context, regions []tabix.Region) models.CategoryResult {
	return f.run(ctx, func(ctx context.Context, s Source) (resources.Records, error) {
		return s.FetchRanges(ctx, regions)
	})
}

func (f *Fetcher) run(ctx context.Context, fetch fetchFunc) models.CategoryResult {
	start := time.Now()

	// one slot per source so no locking is needed
	slots := make([]resources.Records, len(f.sources))
	errs := make([]error, len(f.sources))

	// a plain group: one failure must not cancel the siblings
	var g errgroup.Group
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}
	for i, s := range f.sources {
		i, s := i, s
		g.Go(func() error {
			t := time.Now()
			recs, err := fetch(ctx, s)
			f.metrics.ObserveAdapter(string(f.Category), s.ID(), time.Since(t), err)
			if err != nil {
				errs[i] = err
				return nil
			}
			slots[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	partials := make([]Partial, 0, len(f.sources))
	var failed []string
	for i, s := range f.sources {
		if errs[i] != nil {
			log.Errorf("error fetching %s data from %s: %s", f.Category, s.ID(), detail(errs[i]))
			failed = append(failed, s.ID())
			continue
		}
		partials = append(partials, Partial{Resources: s.Resources(), Records: slots[i]})
	}

	result := Merge(f.Category, partials)
	result.Failed = failed
	result.Time = time.Since(start).Seconds()

	f.metrics.ObserveCategory(string(f.Category), time.Since(start))
	log.Infof("%s total time (s): %.3f", f.Category, result.Time)
	return result
}

func detail(err error) string {
	var dataErr *apierrors.DataAccessError
	if errors.As(err, &dataErr) {
		return dataErr.Detail()
	}
	return err.Error()
}
