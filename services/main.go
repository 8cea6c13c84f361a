package services

import (
	"github.com/go-co-op/gocron"
	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/sqlite"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/cache"
	"github.com/fulltiltgenomics/genetics-results-api/services/datafetch"
	"github.com/fulltiltgenomics/genetics-results-api/services/frequency"
	"github.com/fulltiltgenomics/genetics-results-api/services/genes"
	"github.com/fulltiltgenomics/genetics-results-api/services/metrics"
	"github.com/fulltiltgenomics/genetics-results-api/services/resources"
	"github.com/fulltiltgenomics/genetics-results-api/services/results"
)

// Services holds the process-wide singletons.
type Services struct {
	Results  *results.Service
	Registry *resources.Registry

	sweeper *gocron.Scheduler
}

// Bootstrap builds every resource once. Any ResourceInitError is fatal for
// the caller; the optional stores (gene table, gene model, metadata) are
// skipped with a warning when not configured.
func Bootstrap(cfg *models.Config, store tabix.Store, m *metrics.Metrics) (*Services, error) {
	registry := resources.NewRegistry(store)

	assoc, err := registry.Build(cfg.Resources.Assoc)
	if err != nil {
		registry.Close()
		return nil, err
	}
	finemapped, err := registry.Build(cfg.Resources.Finemapped)
	if err != nil {
		registry.Close()
		return nil, err
	}
	ld, err := registry.Build(cfg.Resources.LDAssoc)
	if err != nil {
		registry.Close()
		return nil, err
	}
	log.Infof("%d assoc resources initialized", len(assoc))
	log.Infof("%d finemapped resources initialized", len(finemapped))
	if len(ld) > 0 {
		log.Infof("%d LD proxy association resources initialized", len(ld))
	}

	freq, err := frequency.NewService(cfg.Resources.Gnomad, store)
	if err != nil {
		registry.Close()
		return nil, err
	}

	rs := &results.Service{
		Config:       cfg,
		Assoc:        datafetch.NewFetcher(c.Assoc, datafetch.Sources(append(assoc, ld...)), cfg.Api.FanOutLimit, m),
		Finemapped:   datafetch.NewFetcher(c.Finemapped, datafetch.Sources(finemapped), cfg.Api.FanOutLimit, m),
		Frequency:    freq,
		CredibleSets: results.Streamers(finemapped),
		Metrics:      m,
	}

	if cfg.Data.GenesFile != "" {
		if rs.Genes, err = genes.Load(cfg.Data.GenesFile); err != nil {
			registry.Close()
			return nil, err
		}
	} else {
		log.Warn("no gene table configured, gene queries are disabled")
	}

	if cfg.Data.GeneModelFile != "" {
		if rs.GeneModel, err = store.Open(cfg.Data.GeneModelFile); err != nil {
			log.Warnf("gene model %s unavailable: %v", cfg.Data.GeneModelFile, err)
		}
	}

	if cfg.Data.MetadataDb != "" {
		if rs.Metadata, err = sqlite.Open(cfg.Data.MetadataDb); err != nil {
			log.Warnf("metadata database %s unavailable: %v", cfg.Data.MetadataDb, err)
		}
	}

	rs.Cache = cache.New(cfg, m)

	return &Services{
		Results:  rs,
		Registry: registry,
		sweeper:  rs.Cache.StartSweeper(cfg.Cache.SweepMinutes),
	}, nil
}

func (s *Services) Close() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.Results.GeneModel != nil {
		s.Results.GeneModel.Close()
	}
	if s.Results.Metadata != nil {
		s.Results.Metadata.Close()
	}
	s.Results.Frequency.Close()
	s.Registry.Close()
}
