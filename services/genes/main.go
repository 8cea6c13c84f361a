package genes

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants/chromosome"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

// Ensembl BioMart export column names
const (
	nameColumn  = "Gene name"
	chromColumn = "Chromosome/scaffold name"
	startColumn = "Gene start (bp)"
	endColumn   = "Gene end (bp)"
)

var (
	lineSplit = regexp.MustCompile(`[\r\n]+`)
	// RS1 is the only gene that starts like an rsid
	rsidRe = regexp.MustCompile(`(?i)^rs\d\d+`)
)

type (
	Range struct {
		Chr   string `json:"chr"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	}

	// Resolver is a read-only gene symbol -> interval table.
	Resolver struct {
		genes map[string]Range
	}
)

func NewResolver(genes map[string]Range) *Resolver {
	upper := make(map[string]Range, len(genes))
	for name, r := range genes {
		upper[strings.ToUpper(name)] = r
	}
	return &Resolver{genes: upper}
}

// Load reads a tab-delimited Ensembl gene table.
func Load(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	r, err := Read(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("reading %s: %w", path, err))
	}
	log.Infof("loaded %d gene ranges from %s", r.Len(), path)
	return r, nil
}

func Read(reader io.Reader) (*Resolver, error) {
	cr := csv.NewReader(reader)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{nameColumn, chromColumn, startColumn, endColumn} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("column %q not found", col)
		}
	}

	genes := map[string]Range{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < len(header) || rec[idx[nameColumn]] == "" {
			continue
		}

		start, err := strconv.Atoi(strings.TrimSpace(rec[idx[startColumn]]))
		if err != nil {
			return nil, fmt.Errorf("gene %s: invalid start %q", rec[idx[nameColumn]], rec[idx[startColumn]])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rec[idx[endColumn]]))
		if err != nil {
			return nil, fmt.Errorf("gene %s: invalid end %q", rec[idx[nameColumn]], rec[idx[endColumn]])
		}

		// later rows win, as in the source table
		genes[strings.ToUpper(rec[idx[nameColumn]])] = Range{
			Chr:   chromosome.Normalize(rec[idx[chromColumn]]),
			Start: start,
			End:   end,
		}
	}
	return &Resolver{genes: genes}, nil
}

func (r *Resolver) Len() int {
	return len(r.genes)
}

// Resolve returns the gene interval widened by padding on both sides. The
// start never goes below 1.
func (r *Resolver) Resolve(gene string, padding int) (Range, error) {
	if padding < 0 {
		return Range{}, apierrors.NewParseError("Padding must not be negative, got %d", padding)
	}

	rng, ok := r.genes[strings.ToUpper(strings.TrimSpace(gene))]
	if !ok {
		return Range{}, &apierrors.GeneNotFoundError{Gene: gene}
	}

	rng.Start -= padding
	if rng.Start < 1 {
		rng.Start = 1
	}
	rng.End += padding
	return rng, nil
}

// Region is Resolve as a queryable region.
func (r *Resolver) Region(gene string, padding int) (tabix.Region, error) {
	rng, err := r.Resolve(gene, padding)
	if err != nil {
		return tabix.Region{}, err
	}
	return tabix.NewRegion(rng.Chr, rng.Start, rng.End)
}

// LooksLikeGene is true for a single token that is neither a variant nor an rsid.
func LooksLikeGene(query string) bool {
	items := make([]string, 0)
	for _, item := range lineSplit.Split(query, -1) {
		if strings.TrimSpace(item) != "" {
			items = append(items, strings.TrimSpace(item))
		}
	}
	if len(items) != 1 || strings.ContainsAny(items[0], " \t,") {
		return false
	}
	if _, err := variant.Parse(items[0]); err == nil {
		return false
	}
	return !rsidRe.MatchString(items[0])
}
