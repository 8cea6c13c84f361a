package models

import (
	"fmt"
	"os"

	"github.com/carbocation/pfx"
	yaml "gopkg.in/yaml.v2"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
)

const (
	DefaultFinemappingMethod = "SuSiE-inf"
	DefaultLDDataType        = "GWAS"
)

// logical column -> default header name (header names are matched without a leading '#')
var defaultColumns = map[string]string{
	"resource":  "resource",
	"chr":       "chr",
	"pos":       "pos",
	"ref":       "ref",
	"alt":       "alt",
	"dataset":   "dataset",
	"data_type": "data_type",
	"trait":     "trait",
	"beta":      "beta",
	"se":        "se",
	"mlog10p":   "mlog10p",
	"pip":       "pip",
	"cs_size":   "cs_size",
	"cs_min_r2": "cs_min_r2",
	"method":    "method",
}

// LD proxy tables key rows on the tag variant and carry p-values instead of
// mlog10p.
var ldColumns = map[string]string{
	"chr":        "tag_chrom",
	"pos":        "tag_pos",
	"ref":        "tag_ref",
	"alt":        "tag_alt",
	"lead_pos":   "lead_pos",
	"lead_ref":   "lead_ref",
	"lead_alt":   "lead_alt",
	"trait":      "study_id",
	"beta":       "beta",
	"odds_ratio": "odds_ratio",
	"pval":       "pval",
	"overall_r2": "overall_r2",
}

type (
	// ResourceDescriptor is built once at startup and never mutated afterwards.
	ResourceDescriptor struct {
		ID       string             `yaml:"resource" json:"resource"`
		Category constants.Category `yaml:"-" json:"-"`
		File     string             `yaml:"file" json:"-"`
		// changes whenever the data behind File changes
		IdentityMarker string            `yaml:"version" json:"version"`
		Columns        map[string]string `yaml:"columns" json:"-"`
		// values of the resource column accepted from a shared file; defaults to ID
		AllowedResources []string `yaml:"allowed_resources" json:"-"`
		// dataset:phenocode pairs (or bare phenocodes) to drop
		IgnorePhenos []string `yaml:"ignore_phenos" json:"-"`
		// fine-mapping only: rows from other methods are dropped
		Method     string   `yaml:"method" json:"-"`
		PThreshold float64  `yaml:"p_thres" json:"p_thres,omitempty"`
		DataTypes  []string `yaml:"data_types" json:"data_types,omitempty"`
		NTraits    string   `yaml:"n_traits" json:"n_traits,omitempty"`
		// LD proxy only: the dataset reported for every row
		Dataset string `yaml:"dataset" json:"dataset,omitempty"`
		URL        string   `yaml:"url" json:"url,omitempty"`
	}

	FrequencyDescriptor struct {
		File           string   `yaml:"file" json:"-"`
		IdentityMarker string   `yaml:"version" json:"version"`
		Populations    []string `yaml:"populations" json:"populations"`
		URL            string   `yaml:"url" json:"url,omitempty"`
	}

	Resources struct {
		Assoc      []ResourceDescriptor `yaml:"assoc" json:"assoc"`
		Finemapped []ResourceDescriptor `yaml:"finemapped" json:"finemapped"`
		Gnomad     FrequencyDescriptor  `yaml:"gnomad" json:"gnomad"`
		// association results reported through LD with a lead variant
		LDAssoc []ResourceDescriptor `yaml:"ld_assoc" json:"ld_assoc,omitempty"`
	}
)

// Column returns the header name configured for a logical column.
func (d *ResourceDescriptor) Column(logical string) string {
	if name, ok := d.Columns[logical]; ok && name != "" {
		return name
	}
	if d.Category == c.LDAssoc {
		if name, ok := ldColumns[logical]; ok {
			return name
		}
	}
	return defaultColumns[logical]
}

// DataType is the data type reported for rows without a data_type column.
func (d *ResourceDescriptor) DataType() string {
	if len(d.DataTypes) == 0 {
		return DefaultLDDataType
	}
	return d.DataTypes[0]
}

func (d *ResourceDescriptor) Allowed() []string {
	if len(d.AllowedResources) == 0 {
		return []string{d.ID}
	}
	return d.AllowedResources
}

func LoadResources(path string) (Resources, error) {
	var res Resources

	f, err := os.Open(path)
	if err != nil {
		return res, pfx.Err(err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&res); err != nil {
		return res, pfx.Err(fmt.Errorf("decoding %s: %w", path, err))
	}

	if err := res.Validate(); err != nil {
		return res, err
	}
	return res, nil
}

// Validate assigns categories and defaults and rejects duplicate resource ids.
func (r *Resources) Validate() error {
	if err := normalize(r.Assoc, c.Assoc); err != nil {
		return err
	}
	if err := normalize(r.Finemapped, c.Finemapped); err != nil {
		return err
	}
	if err := normalize(r.LDAssoc, c.LDAssoc); err != nil {
		return err
	}

	// LD proxy rows are merged into the association results
	assoc := map[string]bool{}
	for _, id := range IDs(r.Assoc) {
		assoc[id] = true
	}
	for _, id := range IDs(r.LDAssoc) {
		if assoc[id] {
			return &apierrors.ResourceInitError{Resource: id, Reason: "ld_assoc resource id is also an assoc resource"}
		}
	}
	return nil
}

// AssocIDs lists every resource id that can appear in association results.
func (r *Resources) AssocIDs() []string {
	return append(IDs(r.Assoc), IDs(r.LDAssoc)...)
}

func normalize(descriptors []ResourceDescriptor, cat constants.Category) error {
	seen := map[string]bool{}
	for i := range descriptors {
		d := &descriptors[i]
		if d.ID == "" {
			return &apierrors.ResourceInitError{Resource: fmt.Sprintf("%s[%d]", cat, i), Reason: "missing resource id"}
		}
		if seen[d.ID] {
			return &apierrors.ResourceInitError{Resource: d.ID, Reason: fmt.Sprintf("duplicate %s resource id", cat)}
		}
		if d.File == "" {
			return &apierrors.ResourceInitError{Resource: d.ID, Reason: "missing file"}
		}
		seen[d.ID] = true

		d.Category = cat
		if cat == c.Finemapped && d.Method == "" {
			d.Method = DefaultFinemappingMethod
		}
		if cat == c.LDAssoc && d.Dataset == "" {
			d.Dataset = d.ID
		}
	}
	return nil
}

// IDs returns resource ids in configuration order.
func IDs(descriptors []ResourceDescriptor) []string {
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		ids = append(ids, d.Allowed()...)
	}
	return ids
}
