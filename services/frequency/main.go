package frequency

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/labstack/gommon/log"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

const (
	afPrefix           = "AF_"
	consequencesColumn = "consequences"
	resourceID         = "gnomad"
)

// Service reads the population frequency resource.
type Service struct {
	Descriptor models.FrequencyDescriptor

	file        tabix.File
	header      []string
	populations []string
}

func NewService(d models.FrequencyDescriptor, store tabix.Store) (*Service, error) {
	file, err := store.Open(d.File)
	if err != nil {
		return nil, &apierrors.ResourceInitError{Resource: resourceID, Reason: err.Error()}
	}

	header := make([]string, 0, len(file.Header()))
	for _, h := range file.Header() {
		header = append(header, strings.TrimPrefix(strings.TrimSpace(h), "#"))
	}

	cols := tabix.ColumnIndex(header)
	for _, required := range []string{"chr", "pos", "ref", "alt", "genome_or_exome", "AN"} {
		if _, ok := cols[required]; !ok {
			file.Close()
			return nil, &apierrors.ResourceInitError{Resource: resourceID, Reason: fmt.Sprintf("column %q not found in the header of %s", required, d.File)}
		}
	}

	pops := d.Populations
	if len(pops) == 0 {
		for _, h := range header {
			if strings.HasPrefix(h, afPrefix) {
				pops = append(pops, strings.TrimPrefix(h, afPrefix))
			}
		}
	}
	for _, p := range pops {
		if _, ok := cols[afPrefix+p]; !ok {
			file.Close()
			return nil, &apierrors.ResourceInitError{Resource: resourceID, Reason: fmt.Sprintf("population %q has no %s%s column", p, afPrefix, p)}
		}
	}

	log.Infof("initialized frequency resource from %s with populations %v", d.File, pops)
	return &Service{
		Descriptor:  d,
		file:        file,
		header:      header,
		populations: pops,
	}, nil
}

func (s *Service) Identity() string {
	return resourceID + "=" + s.Descriptor.IdentityMarker + "|" + s.file.Identity()
}

func (s *Service) Populations() []string {
	return s.populations
}

func (s *Service) Close() error {
	return s.file.Close()
}

// FetchVariants keeps only rows of the requested variants. gene, when set,
// keeps only rows whose most severe consequence is in that gene.
func (s *Service) FetchVariants(ctx context.Context, variants []variant.Variant, gene string) (*models.FrequencyResults, error) {
	regions := make([]tabix.Region, 0, len(variants))
	for _, v := range variants {
		regions = append(regions, tabix.Region{Chr: v.Chr, Begin: v.Pos, Stop: v.Pos})
	}
	return s.fetch(ctx, regions, variant.Set(variants), gene)
}

func (s *Service) FetchRanges(ctx context.Context, regions []tabix.Region, gene string) (*models.FrequencyResults, error) {
	return s.fetch(ctx, regions, nil, gene)
}

func (s *Service) Stream(ctx context.Context, w io.Writer, region tabix.Region) error {
	if err := s.file.Stream(ctx, w, region, true); err != nil {
		return &apierrors.DataAccessError{Resource: resourceID, Err: err}
	}
	return nil
}

// StreamVariants writes the header and the raw rows of the region that belong
// to one of the variants. Regions can hold far more rows than were asked for.
func (s *Service) StreamVariants(ctx context.Context, w io.Writer, region tabix.Region, variants []variant.Variant) error {
	rows, err := s.file.Query(ctx, []tabix.Region{region})
	if err != nil {
		return &apierrors.DataAccessError{Resource: resourceID, Err: err}
	}

	wanted := variant.Set(variants)
	cols := tabix.ColumnIndex(s.header)
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(s.file.Header(), "\t") + "\n"); err != nil {
		return err
	}
	for _, fields := range rows {
		if len(fields) < len(s.header) {
			continue
		}
		pos, err := strconv.Atoi(fields[cols["pos"]])
		if err != nil {
			continue
		}
		v, err := variant.New(fields[cols["chr"]], pos, fields[cols["ref"]], fields[cols["alt"]])
		if err != nil {
			continue
		}
		if _, ok := wanted[v.Key()]; !ok {
			continue
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (s *Service) fetch(ctx context.Context, regions []tabix.Region, wanted map[string]variant.Variant, gene string) (*models.FrequencyResults, error) {
	start := time.Now()

	rows, err := s.file.Query(ctx, regions)
	if err != nil {
		return nil, &apierrors.DataAccessError{Resource: resourceID, Err: err}
	}

	data := map[string]*models.FrequencyResult{}
	order := make([]string, 0)
	for _, fields := range rows {
		rec, err := s.decode(fields)
		if err != nil {
			return nil, &apierrors.DataAccessError{Resource: resourceID, Err: err}
		}

		v, err := variant.New(rec.Chr, rec.Pos, rec.Ref, rec.Alt)
		if err != nil {
			return nil, &apierrors.DataAccessError{Resource: resourceID, Err: err}
		}
		key := v.Key()
		if wanted != nil {
			if _, ok := wanted[key]; !ok {
				continue
			}
		}
		if gene != "" && !strings.EqualFold(rec.GeneMostSevere, gene) {
			continue
		}

		res, ok := data[key]
		if !ok {
			res = &models.FrequencyResult{}
			data[key] = res
			order = append(order, key)
		}
		switch rec.GenomeOrExome {
		case models.Exomes:
			res.Exomes = rec
		case models.Genomes:
			res.Genomes = rec
		default:
			log.Warnf("skipping %s row with unknown sub-dataset %q", key, rec.GenomeOrExome)
		}
	}

	if len(data) == 0 {
		return nil, &apierrors.VariantNotFoundError{Message: "No variants found"}
	}

	found := make([]string, 0, len(order))
	ac0 := make([]string, 0)
	for _, key := range order {
		res := data[key]
		if res.Exomes == nil && res.Genomes == nil {
			delete(data, key)
			continue
		}
		found = append(found, key)
		if isAC0(res.Exomes) && isAC0(res.Genomes) {
			ac0 = append(ac0, key)
		}
		for _, rec := range []*models.FrequencyRecord{res.Exomes, res.Genomes} {
			if rec != nil {
				rec.Popmax, rec.Popmin = s.extremes(rec)
			}
		}
		res.Preferred = preferred(res)
	}
	if len(found) == 0 {
		return nil, &apierrors.VariantNotFoundError{Message: "No variants found"}
	}
	variant.SortKeys(found)
	variant.SortKeys(ac0)

	elapsed := time.Since(start).Seconds()
	log.Infof("frequency fetch time (s): %.3f", elapsed)

	return &models.FrequencyResults{
		FoundVariants: found,
		AC0Variants:   ac0,
		Data:          data,
		FreqSummary:   Summarize(data, s.populations),
		Time:          elapsed,
	}, nil
}

// decode maps one row onto a record. NA and empty fields are left unset.
func (s *Service) decode(fields []string) (*models.FrequencyRecord, error) {
	if len(fields) < len(s.header) {
		return nil, fmt.Errorf("row has %d fields, expected %d", len(fields), len(s.header))
	}

	rec := &models.FrequencyRecord{
		AF:           map[string]null.Float{},
		Consequences: []models.Consequence{},
	}
	raw := make(map[string]interface{}, len(s.header))
	for i, h := range s.header {
		value := fields[i]
		if value == models.Missing || value == "" {
			if strings.HasPrefix(h, afPrefix) {
				rec.AF[strings.TrimPrefix(h, afPrefix)] = null.Float{}
			}
			continue
		}

		switch {
		case strings.HasPrefix(h, afPrefix):
			af, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", h, value)
			}
			rec.AF[strings.TrimPrefix(h, afPrefix)] = null.FloatFrom(af)
		case strings.EqualFold(h, consequencesColumn):
			csq, err := groupConsequences([]byte(value))
			if err != nil {
				return nil, err
			}
			rec.Consequences = csq
		default:
			raw[h] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           rec,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	rec.GenomeOrExome = subDataset(rec.GenomeOrExome)
	rec.MostSevere = cleanConsequence(rec.MostSevere)
	return rec, nil
}

// extremes returns popmax and popmin over the configured populations. Only
// strictly higher or lower frequencies replace the running extreme.
func (s *Service) extremes(rec *models.FrequencyRecord) (*models.PopulationFrequency, *models.PopulationFrequency) {
	popmax := &models.PopulationFrequency{Pop: models.Missing, AF: 0}
	popmin := &models.PopulationFrequency{Pop: models.Missing, AF: 1}
	for _, pop := range s.populations {
		af, ok := rec.AF[pop]
		if !ok || !af.Valid {
			continue
		}
		if af.Float64 > popmax.AF {
			popmax = &models.PopulationFrequency{Pop: pop, AF: af.Float64}
		}
		if af.Float64 < popmin.AF {
			popmin = &models.PopulationFrequency{Pop: pop, AF: af.Float64}
		}
	}
	return popmax, popmin
}

// preferred picks exomes only when they carry more alleles than genomes.
func preferred(res *models.FrequencyResult) string {
	if res.Genomes == nil || (res.Exomes != nil && res.Exomes.AN > res.Genomes.AN) {
		return models.Exomes
	}
	return models.Genomes
}

func isAC0(rec *models.FrequencyRecord) bool {
	return rec == nil || strings.Contains(rec.Filters, "AC0")
}

func subDataset(text string) string {
	switch strings.ToLower(text) {
	case "e", models.Exomes:
		return models.Exomes
	case "g", models.Genomes:
		return models.Genomes
	}
	return text
}

func cleanConsequence(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "_variant", ""), "_", " ")
}

// groupConsequences flattens [{gene_symbol, gene_id, consequences: [...]}, ...]
// into one entry per distinct (gene symbol, consequence), genes in order of
// first appearance.
func groupConsequences(raw []byte) ([]models.Consequence, error) {
	parsed, err := gabs.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid consequences: %w", err)
	}
	children, err := parsed.Children()
	if err != nil {
		return nil, fmt.Errorf("invalid consequences: %w", err)
	}

	genes := make([]string, 0)
	byGene := map[string][]string{}
	seen := map[string]bool{}
	for _, child := range children {
		symbol, _ := child.Path("gene_symbol").Data().(string)
		if _, ok := byGene[symbol]; !ok {
			genes = append(genes, symbol)
			byGene[symbol] = []string{}
		}

		csqs, err := child.Path("consequences").Children()
		if err != nil {
			continue
		}
		for _, c := range csqs {
			name, ok := c.Data().(string)
			if !ok || seen[symbol+"\x00"+name] {
				continue
			}
			seen[symbol+"\x00"+name] = true
			byGene[symbol] = append(byGene[symbol], name)
		}
	}

	out := make([]models.Consequence, 0)
	for _, g := range genes {
		for _, name := range byGene[g] {
			out = append(out, models.Consequence{GeneSymbol: g, Consequence: cleanConsequence(name)})
		}
	}
	return out, nil
}
