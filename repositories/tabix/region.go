package tabix

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/brentp/irelate/interfaces"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants/chromosome"
)

// MaxPosition is the largest coordinate a tabix index can address.
const MaxPosition = 1<<29 - 1

var regionRe = regexp.MustCompile(`^\s*(?:chr)?([0-9A-Za-z]+)[:\s-]+(\d+)[-\s]+(\d+)\s*$`)

var _ interfaces.IPosition = Region{}

// Region is a 1-based, inclusive genomic interval. Readers take it as an
// irelate position, which is 0-based and half-open.
type Region struct {
	Chr   string
	Begin int
	Stop  int
}

func NewRegion(chr string, start int, end int) (Region, error) {
	if start < 1 {
		start = 1
	}
	if end < start {
		return Region{}, apierrors.NewParseError("Invalid region %s:%d-%d, end is before start", chr, start, end)
	}
	if start > MaxPosition {
		return Region{}, apierrors.NewParseError("Invalid region %s:%d-%d, start is past %d", chr, start, end, MaxPosition)
	}
	if end > MaxPosition {
		end = MaxPosition
	}
	return Region{Chr: chromosome.Normalize(chr), Begin: start, Stop: end}, nil
}

// ParseRegion reads "chr:start-end".
func ParseRegion(text string) (Region, error) {
	m := regionRe.FindStringSubmatch(text)
	if m == nil {
		return Region{}, apierrors.NewParseError("Could not parse region %q, expected chr:start-end", text)
	}
	start, _ := strconv.Atoi(m[2])
	end, _ := strconv.Atoi(m[3])
	return NewRegion(m[1], start, end)
}

func (r Region) Chrom() string {
	return r.Chr
}

// Start is 0-based for the index.
func (r Region) Start() uint32 {
	return uint32(r.Begin - 1)
}

func (r Region) End() uint32 {
	return uint32(r.Stop)
}

func (r Region) Contains(chr string, pos int) bool {
	return chromosome.Normalize(chr) == r.Chr && pos >= r.Begin && pos <= r.Stop
}

// Span is the number of bases covered.
func (r Region) Span() int {
	return r.Stop - r.Begin + 1
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chr, r.Begin, r.Stop)
}

// MergeRegions sorts regions and merges overlapping or adjacent ones so no
// row is read twice.
func MergeRegions(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}

	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := chromosome.Compare(sorted[i].Chr, sorted[j].Chr); c != 0 {
			return c < 0
		}
		return sorted[i].Begin < sorted[j].Begin
	})

	merged := []Region{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Chr == last.Chr && r.Begin <= last.Stop+1 {
			if r.Stop > last.Stop {
				last.Stop = r.Stop
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
