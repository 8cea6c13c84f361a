package models

import "gopkg.in/guregu/null.v3"

const (
	Exomes  = "exomes"
	Genomes = "genomes"
)

type (
	Consequence struct {
		GeneSymbol  string `json:"gene_symbol"`
		Consequence string `json:"consequence"`
	}

	PopulationFrequency struct {
		Pop string  `json:"pop"`
		AF  float64 `json:"af"`
	}

	// FrequencyRecord is one row of the frequency resource (one sub-dataset of
	// one variant).
	FrequencyRecord struct {
		Chr            string `mapstructure:"chr" json:"chr"`
		Pos            int    `mapstructure:"pos" json:"pos"`
		Ref            string `mapstructure:"ref" json:"ref"`
		Alt            string `mapstructure:"alt" json:"alt"`
		Rsid           string `mapstructure:"rsid" json:"rsid,omitempty"`
		GenomeOrExome  string `mapstructure:"genome_or_exome" json:"genome_or_exome"`
		AN             int    `mapstructure:"AN" json:"AN"`
		Filters        string `mapstructure:"filters" json:"filters,omitempty"`
		MostSevere     string `mapstructure:"most_severe" json:"most_severe,omitempty"`
		GeneMostSevere string `mapstructure:"gene_most_severe" json:"gene_most_severe,omitempty"`

		AF           map[string]null.Float  `mapstructure:"-" json:"af"`
		Consequences []Consequence          `mapstructure:"-" json:"consequences"`
		Extra        map[string]interface{} `mapstructure:",remain" json:"extra,omitempty"`

		Popmax *PopulationFrequency `mapstructure:"-" json:"popmax,omitempty"`
		Popmin *PopulationFrequency `mapstructure:"-" json:"popmin,omitempty"`
	}

	FrequencyResult struct {
		Exomes    *FrequencyRecord `json:"exomes"`
		Genomes   *FrequencyRecord `json:"genomes"`
		Preferred string           `json:"preferred"`
	}

	PopulationSummary struct {
		Pop     string  `json:"pop"`
		Max     int     `json:"max"`
		MaxPerc float64 `json:"maxPerc"`
		Min     int     `json:"min"`
		MinPerc float64 `json:"minPerc"`
	}

	FrequencyResults struct {
		FoundVariants []string                    `json:"found_variants"`
		AC0Variants   []string                    `json:"ac0_variants"`
		Data          map[string]*FrequencyResult `json:"data"`
		FreqSummary   []PopulationSummary         `json:"freq_summary"`
		Time          float64                     `json:"time"`
	}
)

// PreferredRecord returns the sub-dataset chosen for this variant.
func (r *FrequencyResult) PreferredRecord() *FrequencyRecord {
	if r.Preferred == Exomes {
		return r.Exomes
	}
	return r.Genomes
}
