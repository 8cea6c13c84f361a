package models

type Config struct {
	Debug bool `envconfig:"GENRES_DEBUG" default:"false"`

	Api struct {
		Port             string `envconfig:"GENRES_API_PORT" default:"8080"`
		MaxQueryVariants int    `envconfig:"GENRES_MAX_QUERY_VARIANTS" default:"2000"`
		// limits for gene padding and region length in bases, 0 disables
		MaxPadding    int `envconfig:"GENRES_MAX_PADDING" default:"5000000"`
		MaxRegionSpan int `envconfig:"GENRES_MAX_REGION_SPAN" default:"10000000"`
		// 0 means one goroutine per resource
		FanOutLimit int `envconfig:"GENRES_FANOUT_LIMIT" default:"0"`
	}
	Data struct {
		ResourcesFile string `envconfig:"GENRES_RESOURCES_FILE" default:"config/resources.yml"`
		GenesFile     string `envconfig:"GENRES_GENES_FILE"`
		// optional tabix-indexed gene model served as is
		GeneModelFile string `envconfig:"GENRES_GENE_MODEL_FILE"`
		MetadataDb    string `envconfig:"GENRES_METADATA_DB"`
	}
	Cache struct {
		Enabled      bool   `envconfig:"GENRES_CACHE_ENABLED" default:"true"`
		Dir          string `envconfig:"GENRES_CACHE_DIR" default:"/tmp/genetics-api-cache"`
		MaxSizeBytes int64  `envconfig:"GENRES_CACHE_MAX_SIZE_BYTES" default:"10737418240"`
		SweepMinutes int    `envconfig:"GENRES_CACHE_SWEEP_MINUTES" default:"30"`
	}

	Resources Resources `ignored:"true"`
}
