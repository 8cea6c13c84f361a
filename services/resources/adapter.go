package resources

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

var requiredColumns = map[constants.Category][]string{
	c.Assoc:      {"chr", "pos", "ref", "alt", "dataset", "data_type", "trait", "beta", "se", "mlog10p"},
	c.Finemapped: {"chr", "pos", "ref", "alt", "dataset", "data_type", "trait", "beta", "se", "mlog10p", "pip", "cs_size", "cs_min_r2"},
	c.LDAssoc:    {"chr", "pos", "ref", "alt", "lead_pos", "lead_ref", "lead_alt", "trait", "beta", "odds_ratio", "pval", "overall_r2"},
}

// columns that may be absent from a header
var optionalColumns = []string{"resource", "method"}

type (
	// Records maps canonical variant keys to the rows found for them.
	Records map[string][]models.ResourceRecord

	// Adapter owns one resource file: its header layout and its row filters.
	Adapter struct {
		Descriptor models.ResourceDescriptor

		file    tabix.File
		cols    map[string]int
		width   int
		allowed map[string]bool
		ignored map[string]bool
	}
)

// NewAdapter opens the resource file and resolves its columns. Any failure is
// a ResourceInitError.
func NewAdapter(d models.ResourceDescriptor, store tabix.Store) (*Adapter, error) {
	required, ok := requiredColumns[d.Category]
	if !ok {
		return nil, &apierrors.ResourceInitError{Resource: d.ID, Reason: fmt.Sprintf("unsupported category %q", d.Category)}
	}

	file, err := store.Open(d.File)
	if err != nil {
		return nil, &apierrors.ResourceInitError{Resource: d.ID, Reason: err.Error()}
	}

	header := tabix.ColumnIndex(file.Header())
	a := &Adapter{
		Descriptor: d,
		file:       file,
		cols:       map[string]int{},
		allowed:    map[string]bool{},
		ignored:    map[string]bool{},
	}

	for _, logical := range required {
		idx, ok := header[d.Column(logical)]
		if !ok {
			file.Close()
			return nil, &apierrors.ResourceInitError{
				Resource: d.ID,
				Reason:   fmt.Sprintf("column %q not found in the header of %s", d.Column(logical), d.File),
			}
		}
		a.cols[logical] = idx
	}
	for _, logical := range optionalColumns {
		if idx, ok := header[d.Column(logical)]; ok {
			a.cols[logical] = idx
		}
	}
	for _, idx := range a.cols {
		if idx+1 > a.width {
			a.width = idx + 1
		}
	}

	for _, id := range d.Allowed() {
		a.allowed[id] = true
	}
	for _, p := range d.IgnorePhenos {
		a.ignored[p] = true
	}

	log.Infof("initialized %s resource %s from %s", d.Category, d.ID, d.File)
	return a, nil
}

func (a *Adapter) ID() string {
	return a.Descriptor.ID
}

func (a *Adapter) Category() constants.Category {
	return a.Descriptor.Category
}

// Identity changes whenever the configured version or the file on disk changes.
func (a *Adapter) Identity() string {
	return a.Descriptor.IdentityMarker + "|" + a.file.Identity()
}

// Resources lists the resource ids this adapter can emit, in configuration order.
func (a *Adapter) Resources() []string {
	return a.Descriptor.Allowed()
}

func (a *Adapter) Close() error {
	return a.file.Close()
}

// ParseRow turns one tab-split row into a record. kept is false when one of
// the filters discards the row. wanted restricts rows to the requested
// variants; nil keeps every row.
func (a *Adapter) ParseRow(fields []string, wanted map[string]variant.Variant) (rec models.ResourceRecord, kept bool, err error) {
	if len(fields) < a.width {
		return rec, false, fmt.Errorf("row has %d fields, expected at least %d", len(fields), a.width)
	}

	resource := a.Descriptor.ID
	if idx, ok := a.cols["resource"]; ok {
		resource = fields[idx]
	}
	if !a.allowed[resource] {
		return rec, false, nil
	}

	pos, err := strconv.Atoi(a.field(fields, "pos"))
	if err != nil {
		return rec, false, fmt.Errorf("invalid position %q", a.field(fields, "pos"))
	}
	v, err := variant.New(a.field(fields, "chr"), pos, a.field(fields, "ref"), a.field(fields, "alt"))
	if err != nil {
		return rec, false, err
	}
	key := v.Key()
	if wanted != nil {
		if _, ok := wanted[key]; !ok {
			return rec, false, nil
		}
	}

	if a.Category() == c.LDAssoc {
		return a.parseLDRow(fields, v, resource)
	}

	dataset := a.field(fields, "dataset")
	trait := a.field(fields, "trait")
	if a.ignored[dataset+":"+trait] || a.ignored[trait] {
		return rec, false, nil
	}

	if a.Category() == c.Assoc && a.field(fields, "beta") == models.Missing {
		return rec, false, nil
	}

	if a.Category() == c.Finemapped {
		if idx, ok := a.cols["method"]; ok && fields[idx] != a.Descriptor.Method {
			return rec, false, nil
		}
	}

	dataType := a.field(fields, "data_type")
	if a.Category() == c.Finemapped && dataType == "gwas" {
		dataType = "GWAS"
	}
	phenocode := trait
	if dataType == "sQTL" {
		phenocode = dataset + ":" + trait
	}

	rec = models.ResourceRecord{
		Variant:   key,
		Resource:  resource,
		Dataset:   dataset,
		DataType:  dataType,
		Phenocode: phenocode,
	}

	if beta, ok := parseFloat(a.field(fields, "beta")); ok {
		rec.Beta = null.FloatFrom(beta)
	} else if a.Category() == c.Assoc {
		return rec, false, fmt.Errorf("invalid beta %q", a.field(fields, "beta"))
	}
	if se, ok := parseFloat(a.field(fields, "se")); ok {
		rec.SE = null.FloatFrom(se)
	}

	rawP := a.field(fields, "mlog10p")
	if IsMissingSignificance(rawP) {
		if rec.Beta.Valid && rec.SE.Valid {
			p, ok := FallbackMlog10p(rec.Beta.Float64, rec.SE.Float64)
			if !ok && a.Category() == c.Assoc {
				// no usable significance at all
				return rec, false, nil
			}
			rec.Mlog10p = null.NewFloat(p, ok)
		} else if a.Category() == c.Assoc {
			return rec, false, nil
		}
	} else {
		p, err := strconv.ParseFloat(rawP, 64)
		if err != nil {
			return rec, false, fmt.Errorf("invalid mlog10p %q", rawP)
		}
		rec.Mlog10p = null.FloatFrom(p)
	}

	if a.Category() == c.Finemapped {
		pip, err := strconv.ParseFloat(a.field(fields, "pip"), 64)
		if err != nil {
			return rec, false, fmt.Errorf("invalid pip %q", a.field(fields, "pip"))
		}
		rec.PIP = null.FloatFrom(pip)

		if n, err := strconv.ParseInt(a.field(fields, "cs_size"), 10, 64); err == nil {
			rec.CSSize = null.IntFrom(n)
		}
		if r2, ok := parseFloat(a.field(fields, "cs_min_r2")); ok {
			rec.CSMinR2 = null.FloatFrom(r2)
		}
	}

	return rec, true, nil
}

// FetchVariants reads the single-base region of every variant and keeps
// only rows matching one of them exactly.
func (a *Adapter) FetchVariants(ctx context.Context, variants []variant.Variant) (Records, error) {
	regions := make([]tabix.Region, 0, len(variants))
	for _, v := range variants {
		regions = append(regions, tabix.Region{Chr: v.Chr, Begin: v.Pos, Stop: v.Pos})
	}
	return a.fetch(ctx, regions, variant.Set(variants))
}

// FetchRanges keeps every row inside the regions.
func (a *Adapter) FetchRanges(ctx context.Context, regions []tabix.Region) (Records, error) {
	return a.fetch(ctx, regions, nil)
}

// Stream proxies the raw rows of a region.
func (a *Adapter) Stream(ctx context.Context, w io.Writer, region tabix.Region, includeHeader bool) error {
	if err := a.file.Stream(ctx, w, region, includeHeader); err != nil {
		return &apierrors.DataAccessError{Resource: a.ID(), Err: err}
	}
	return nil
}

func (a *Adapter) fetch(ctx context.Context, regions []tabix.Region, wanted map[string]variant.Variant) (Records, error) {
	out := Records{}
	if len(regions) == 0 {
		return out, nil
	}

	rows, err := a.file.Query(ctx, regions)
	if err != nil {
		return nil, &apierrors.DataAccessError{Resource: a.ID(), Err: err}
	}

	for _, fields := range rows {
		rec, kept, err := a.ParseRow(fields, wanted)
		if err != nil {
			return nil, &apierrors.DataAccessError{
				Resource: a.ID(),
				Err:      fmt.Errorf("malformed row %q: %w", strings.Join(fields, "\t"), err),
			}
		}
		if kept {
			out[rec.Variant] = append(out[rec.Variant], rec)
		}
	}
	return out, nil
}

func (a *Adapter) field(fields []string, logical string) string {
	return fields[a.cols[logical]]
}
