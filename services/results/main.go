package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	qm "github.com/fulltiltgenomics/genetics-results-api/models/constants/query-mode"
	"github.com/fulltiltgenomics/genetics-results-api/models/dtos"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/sqlite"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/cache"
	"github.com/fulltiltgenomics/genetics-results-api/services/datafetch"
	"github.com/fulltiltgenomics/genetics-results-api/services/frequency"
	"github.com/fulltiltgenomics/genetics-results-api/services/genes"
	"github.com/fulltiltgenomics/genetics-results-api/services/metrics"
	"github.com/fulltiltgenomics/genetics-results-api/services/query"
)

const frequencyCategory = "gnomad"

type (
	// Streamer proxies raw rows of one resource.
	Streamer interface {
		ID() string
		Stream(ctx context.Context, w io.Writer, region tabix.Region, includeHeader bool) error
	}

	// Service answers variant, gene and range queries over all categories.
	// Every field except Config, Assoc, Finemapped and Frequency is optional.
	Service struct {
		Config     *models.Config
		Assoc      *datafetch.Fetcher
		Finemapped *datafetch.Fetcher
		Frequency  *frequency.Service

		Genes        *genes.Resolver
		CredibleSets []Streamer
		GeneModel    tabix.File
		Metadata     *sqlite.MetadataStore
		Cache        *cache.DiskCache
		Metrics      *metrics.Metrics
	}

	// gathered holds the outcome of the three concurrent category queries
	gathered struct {
		assoc      models.CategoryResult
		finemapped models.CategoryResult
		freq       *models.FrequencyResults
		freqErr    error
		freqTime   float64
	}
)

// Query treats a lone gene-looking token as a gene and anything else as a
// variant list.
func (s *Service) Query(ctx context.Context, text string) (*dtos.ResultsResponse, error) {
	if s.Genes != nil && genes.LooksLikeGene(text) {
		return s.ByGene(ctx, strings.TrimSpace(text), 0)
	}
	return s.ByVariants(ctx, text)
}

// ByVariants parses a variant list and joins all categories for the listed
// variants. The size limit is checked before any resource is touched.
func (s *Service) ByVariants(ctx context.Context, text string) (*dtos.ResultsResponse, error) {
	start := time.Now()

	q, err := query.Parse(text)
	if err != nil {
		return nil, err
	}
	variants := q.Variants()
	if max := s.Config.Api.MaxQueryVariants; max > 0 && len(variants) > max {
		return nil, &apierrors.QueryTooLargeError{Max: max, Requested: len(variants)}
	}
	s.Metrics.ObserveQuerySize(len(variants))

	identities := s.Identities()
	if resp, ok := s.cached(cache.OperationVariants, identities, start, q); ok {
		return resp, nil
	}

	g := s.gather(ctx,
		func(ctx context.Context) models.CategoryResult { return s.Assoc.FetchVariants(ctx, variants) },
		func(ctx context.Context) models.CategoryResult { return s.Finemapped.FetchVariants(ctx, variants) },
		func(ctx context.Context) (*models.FrequencyResults, error) {
			return s.Frequency.FetchVariants(ctx, variants, "")
		},
	)

	resp := assemble(g, false)
	resp.QueryType = q.Mode
	resp.Data, resp.NotFound = byRequest(q, resp.Data)
	if len(resp.Data) == 0 && resp.Complete() {
		return nil, &apierrors.VariantNotFoundError{Message: "No variants found"}
	}

	return s.finish(cache.OperationVariants, identities, start, resp, q), nil
}

// ByGene joins all categories over the gene region. Association and
// fine-mapping rows are kept only for variants the frequency resource places
// in the gene; if that resource fails nothing is filtered out.
func (s *Service) ByGene(ctx context.Context, gene string, padding int) (*dtos.ResultsResponse, error) {
	start := time.Now()

	region, err := s.geneRegion(gene, padding)
	if err != nil {
		return nil, err
	}
	gene = strings.ToUpper(strings.TrimSpace(gene))

	identities := s.Identities()
	if resp, ok := s.cached(cache.OperationGene, identities, start, gene, padding); ok {
		return resp, nil
	}

	g := s.gatherRegion(ctx, region, gene)
	resp := assemble(g, true)
	resp.QueryType = qm.Gene
	resp.Query = gene
	if len(resp.Data) == 0 && resp.Complete() {
		return nil, &apierrors.VariantNotFoundError{Message: fmt.Sprintf("No variants found in gene %s", gene)}
	}

	return s.finish(cache.OperationGene, identities, start, resp, gene, padding), nil
}

func (s *Service) ByRange(ctx context.Context, region tabix.Region) (*dtos.ResultsResponse, error) {
	start := time.Now()
	if err := s.CheckRegion(region); err != nil {
		return nil, err
	}

	identities := s.Identities()
	if resp, ok := s.cached(cache.OperationRange, identities, start, region.String()); ok {
		return resp, nil
	}

	g := s.gatherRegion(ctx, region, "")
	resp := assemble(g, false)
	resp.QueryType = qm.Range
	resp.Query = region.String()
	if len(resp.Data) == 0 && resp.Complete() {
		return nil, &apierrors.VariantNotFoundError{Message: fmt.Sprintf("No variants found in %s", region)}
	}

	return s.finish(cache.OperationRange, identities, start, resp, region.String()), nil
}

// CheckRegion rejects regions longer than the configured span before any
// resource is read.
func (s *Service) CheckRegion(region tabix.Region) error {
	if max := s.Config.Api.MaxRegionSpan; max > 0 && region.Span() > max {
		return &apierrors.RegionTooLargeError{What: "region length", Max: max, Requested: region.Span()}
	}
	return nil
}

func (s *Service) geneRegion(gene string, padding int) (tabix.Region, error) {
	if s.Genes == nil {
		return tabix.Region{}, errors.New("no gene table configured")
	}
	if max := s.Config.Api.MaxPadding; max > 0 && padding > max {
		return tabix.Region{}, &apierrors.RegionTooLargeError{What: "padding", Max: max, Requested: padding}
	}
	region, err := s.Genes.Region(gene, padding)
	if err != nil {
		return tabix.Region{}, err
	}
	return region, s.CheckRegion(region)
}

// Identities lists every resource a result can be built from.
func (s *Service) Identities() []string {
	ids := append([]string{}, s.Assoc.Identities()...)
	ids = append(ids, s.Finemapped.Identities()...)
	return append(ids, s.Frequency.Identity())
}

func (s *Service) gatherRegion(ctx context.Context, region tabix.Region, gene string) gathered {
	regions := []tabix.Region{region}
	return s.gather(ctx,
		func(ctx context.Context) models.CategoryResult { return s.Assoc.FetchRanges(ctx, regions) },
		func(ctx context.Context) models.CategoryResult { return s.Finemapped.FetchRanges(ctx, regions) },
		func(ctx context.Context) (*models.FrequencyResults, error) {
			return s.Frequency.FetchRanges(ctx, regions, gene)
		},
	)
}

func (s *Service) gather(
	ctx context.Context,
	assoc func(context.Context) models.CategoryResult,
	finemapped func(context.Context) models.CategoryResult,
	freq func(context.Context) (*models.FrequencyResults, error),
) gathered {
	var out gathered

	// categories never fail as a whole; each writes its own field
	var g errgroup.Group
	g.Go(func() error {
		out.assoc = assoc(ctx)
		return nil
	})
	g.Go(func() error {
		out.finemapped = finemapped(ctx)
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		out.freq, out.freqErr = freq(ctx)
		out.freqTime = time.Since(t).Seconds()
		s.Metrics.ObserveCategory(frequencyCategory, time.Since(t))
		return nil
	})
	_ = g.Wait()

	if out.freqErr != nil && !apierrors.IsNotFound(out.freqErr) {
		var dataErr *apierrors.DataAccessError
		if errors.As(out.freqErr, &dataErr) {
			log.Errorf("error fetching frequency data: %s", dataErr.Detail())
		} else {
			log.Errorf("error fetching frequency data: %v", out.freqErr)
		}
	}
	return out
}

func (s *Service) cached(op cache.Operation, identities []string, start time.Time, args ...interface{}) (*dtos.ResultsResponse, bool) {
	var resp dtos.ResultsResponse
	if !s.Cache.GetJSON(op, identities, &resp, args...) {
		return nil, false
	}
	resp.QueryID = uuid.New().String()
	resp.Time = time.Since(start).Seconds()
	log.Infof("%s served from cache in %.3fs", op, resp.Time)
	return &resp, true
}

// finish stores complete responses and stamps the per-request fields, which
// are never cached.
func (s *Service) finish(op cache.Operation, identities []string, start time.Time, resp *dtos.ResultsResponse, args ...interface{}) *dtos.ResultsResponse {
	resp.Time = time.Since(start).Seconds()
	if resp.Complete() {
		s.Cache.SetJSON(op, identities, resp, args...)
	}
	resp.QueryID = uuid.New().String()
	log.Infof("%s query %s answered with %d variants in %.3fs", resp.QueryType, resp.QueryID, len(resp.Data), resp.Time)
	return resp
}

// assemble joins the categories per variant, ordered by position. With
// restrict set and a working frequency resource, only variants it found are
// kept.
func assemble(g gathered, restrict bool) *dtos.ResultsResponse {
	resp := &dtos.ResultsResponse{
		Data:        []dtos.VariantResult{},
		NotFound:    []string{},
		AC0Variants: []string{},
		FreqSummary: []models.PopulationSummary{},
		Assoc:       summary(g.assoc),
		Finemapped:  summary(g.finemapped),
		Gnomad:      dtos.CategorySummary{Resources: []string{}, Time: g.freqTime},
	}

	freqData := map[string]*models.FrequencyResult{}
	freqFailed := g.freqErr != nil && !apierrors.IsNotFound(g.freqErr)
	switch {
	case freqFailed:
		resp.Gnomad.Failed = []string{frequencyCategory}
	case g.freq != nil:
		freqData = g.freq.Data
		resp.AC0Variants = g.freq.AC0Variants
		resp.FreqSummary = g.freq.FreqSummary
		resp.Gnomad.Resources = []string{frequencyCategory}
	}

	keys := map[string]bool{}
	for key := range freqData {
		keys[key] = true
	}
	if !restrict || freqFailed {
		for key := range g.assoc.Data {
			keys[key] = true
		}
		for key := range g.finemapped.Data {
			keys[key] = true
		}
	}

	ordered := make([]string, 0, len(keys))
	for key := range keys {
		ordered = append(ordered, key)
	}
	variant.SortKeys(ordered)

	for _, key := range ordered {
		resp.Data = append(resp.Data, dtos.VariantResult{
			Variant:    key,
			Assoc:      records(g.assoc.Data[key]),
			Finemapped: records(g.finemapped.Data[key]),
			Gnomad:     freqData[key],
		})
	}
	return resp
}

// byRequest keeps the requested variants in request order, attaching the
// input values, and lists the ones nothing was found for.
func byRequest(q query.Query, found []dtos.VariantResult) ([]dtos.VariantResult, []string) {
	byKey := make(map[string]dtos.VariantResult, len(found))
	for _, r := range found {
		byKey[r.Variant] = r
	}

	data := make([]dtos.VariantResult, 0, len(found))
	notFound := make([]string, 0)
	seen := map[string]bool{}
	for _, item := range q.Items {
		key := item.Variant.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		r, ok := byKey[key]
		if !ok {
			notFound = append(notFound, key)
			continue
		}
		r.Beta = item.Beta
		r.Custom = item.Custom
		data = append(data, r)
	}
	return data, notFound
}

func summary(res models.CategoryResult) dtos.CategorySummary {
	return dtos.CategorySummary{
		Resources: res.Resources,
		Failed:    res.Failed,
		Time:      res.Time,
	}
}

func records(recs []models.ResourceRecord) []models.ResourceRecord {
	if recs == nil {
		return []models.ResourceRecord{}
	}
	return recs
}
