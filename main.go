package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
	gam "github.com/fulltiltgenomics/genetics-results-api/middleware"
	"github.com/fulltiltgenomics/genetics-results-api/models"
	serviceInfo "github.com/fulltiltgenomics/genetics-results-api/models/constants/service-info"
	dataTypesMvc "github.com/fulltiltgenomics/genetics-results-api/mvc/data-types"
	metadataMvc "github.com/fulltiltgenomics/genetics-results-api/mvc/metadata"
	resultsMvc "github.com/fulltiltgenomics/genetics-results-api/mvc/results"
	serviceInfoMvc "github.com/fulltiltgenomics/genetics-results-api/mvc/service-info"
	streamsMvc "github.com/fulltiltgenomics/genetics-results-api/mvc/streams"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services"
	"github.com/fulltiltgenomics/genetics-results-api/services/metrics"
)

// decompression goroutines per opened tabix file
const bgzfWorkers = 2

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "genetics-results-api",
		Short:        serviceInfo.SERVICE_NAME.String(),
		Long:         serviceInfo.SERVICE_DESCRIPTION.String(),
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newQueryCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			m := metrics.NewMetrics()
			if err := m.Register(prometheus.DefaultRegisterer); err != nil {
				return err
			}

			s, err := services.Bootstrap(cfg, tabix.NewBixStore(bgzfWorkers), m)
			if err != nil {
				return err
			}
			defer s.Close()

			e := newServer(cfg, s)
			return e.Start(":" + cfg.Api.Port)
		},
	}
}

// newQueryCommand runs a single query against the configured resources and
// prints the JSON response.
func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <variants or gene>",
		Short: "Run one query and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Cache.Enabled = false

			s, err := services.Bootstrap(cfg, tabix.NewBixStore(bgzfWorkers), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.Results.Query(context.Background(), strings.Join(args, "\n"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}

func loadConfig() (*models.Config, error) {
	// Gather environment variables
	var cfg models.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Debug {
		log.SetLevel(log.DEBUG)
	} else {
		log.SetLevel(log.INFO)
	}

	resources, err := models.LoadResources(cfg.Data.ResourcesFile)
	if err != nil {
		return nil, err
	}
	cfg.Resources = resources

	fmt.Printf("Using : \n"+
		"\tDebug : %t \n\n"+
		"\tResources File : %s \n"+
		"\tGenes File : %s \n"+
		"\tGene Model File : %s \n"+
		"\tMetadata Database : %s \n\n"+
		"\tMax Query Variants : %d\n"+
		"\tMax Padding : %d\n"+
		"\tMax Region Span : %d\n"+
		"\tCache Enabled : %t\n"+
		"\tCache Directory : %s\n\n"+
		"Running on Port : %s\n",
		cfg.Debug,
		cfg.Data.ResourcesFile, cfg.Data.GenesFile, cfg.Data.GeneModelFile, cfg.Data.MetadataDb,
		cfg.Api.MaxQueryVariants, cfg.Api.MaxPadding, cfg.Api.MaxRegionSpan,
		cfg.Cache.Enabled, cfg.Cache.Dir,
		cfg.Api.Port)

	return &cfg, nil
}

func newServer(cfg *models.Config, s *services.Services) *echo.Echo {
	// Instantiate Server
	e := echo.New()
	e.HideBanner = true

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	// -- Override handlers with the custom context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return h(&contexts.ApiContext{
				Context:        c,
				Config:         cfg,
				ResultsService: s.Results,
			})
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		log.Debugf("[%s] - Root hit!", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/healthz", serviceInfoMvc.GetHealth)
	api.GET("/config", serviceInfoMvc.GetConfig)
	api.GET("/data-types", dataTypesMvc.GetDataTypes)

	// -- Results
	api.POST("/results", resultsMvc.PostResults)
	api.GET("/gene/:gene", resultsMvc.GetGeneResults,
		// middleware
		gam.ValidatePotentialPaddingQueryParameter)
	api.GET("/region/:chr/:start/:end", resultsMvc.GetRegionResults,
		// middleware
		gam.MandateChromosomeParam,
		gam.MandateRegionBounds)

	// -- Raw streams
	api.GET("/gene_cs/:gene", streamsMvc.GetGeneCredibleSets,
		// middleware
		gam.ValidatePotentialPaddingQueryParameter)
	api.GET("/gene_model/:chr/:start/:end", streamsMvc.GetGeneModel,
		// middleware
		gam.MandateChromosomeParam,
		gam.MandateRegionBounds)
	api.POST("/variant_annotation/:chr/:start/:end", streamsMvc.PostVariantAnnotation,
		// middleware
		gam.MandateChromosomeParam,
		gam.MandateRegionBounds)

	// -- Metadata
	api.POST("/trait_metadata", metadataMvc.PostTraitMetadata)
	api.GET("/dataset/:id", metadataMvc.GetDataset)

	return e
}
