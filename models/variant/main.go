package variant

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants/chromosome"
)

var (
	// exactly one delimiter between parts, so "1::5:A:T" has an empty part
	delimiter = regexp.MustCompile(`[-:_/]|\s+`)
	digitsRe  = regexp.MustCompile(`^[0-9]+$`)
	alleleRe  = regexp.MustCompile(`^[ACGTN*]+$`)
)

// Variant is the canonical join key across resources. Equality is exact on
// all four fields so multiallelic sites at one locus stay distinct.
type Variant struct {
	Chr string `json:"chr"`
	Pos int    `json:"pos"`
	Ref string `json:"ref"`
	Alt string `json:"alt"`
}

// New validates and normalizes the four parts of a variant.
func New(chr string, pos int, ref string, alt string) (Variant, error) {
	v := Variant{
		Chr: chromosome.Normalize(chr),
		Pos: pos,
		Ref: strings.ToUpper(ref),
		Alt: strings.ToUpper(alt),
	}

	if v.Chr == "" || strings.ContainsAny(v.Chr, ":-_/ \t") {
		return Variant{}, apierrors.NewParseError("Invalid chromosome %q", chr)
	}
	if pos < 1 {
		return Variant{}, apierrors.NewParseError("Invalid position %d, positions start at 1", pos)
	}
	if !alleleRe.MatchString(v.Ref) || !alleleRe.MatchString(v.Alt) {
		return Variant{}, apierrors.NewParseError("Invalid alleles %q/%q", ref, alt)
	}
	return v, nil
}

// Parse accepts chr:pos:ref:alt with "-", ":" or whitespace (also "_" and "/")
// as delimiters.
func Parse(text string) (Variant, error) {
	parts := delimiter.Split(strings.TrimSpace(text), -1)
	if len(parts) != 4 {
		return Variant{}, apierrors.NewParseError("Could not parse variant %q. %s", text, apierrors.AcceptedFormats)
	}
	for _, part := range parts {
		if part == "" {
			return Variant{}, apierrors.NewParseError("Could not parse variant %q. %s", text, apierrors.AcceptedFormats)
		}
	}

	if !digitsRe.MatchString(parts[1]) {
		return Variant{}, apierrors.NewParseError("Could not parse variant %q: position %q is not numeric", text, parts[1])
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil {
		return Variant{}, apierrors.NewParseError("Could not parse variant %q: position %q is not numeric", text, parts[1])
	}

	return New(parts[0], pos, parts[2], parts[3])
}

func MustParse(text string) Variant {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// String is the exact inverse of Parse for canonical input.
func (v Variant) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", v.Chr, v.Pos, v.Ref, v.Alt)
}

func (v Variant) Key() string {
	return v.String()
}

// Less orders by chromosome (numeric before letters), then position, ref and alt.
func (v Variant) Less(o Variant) bool {
	if c := chromosome.Compare(v.Chr, o.Chr); c != 0 {
		return c < 0
	}
	if v.Pos != o.Pos {
		return v.Pos < o.Pos
	}
	if v.Ref != o.Ref {
		return v.Ref < o.Ref
	}
	return v.Alt < o.Alt
}

func Sort(variants []Variant) {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Less(variants[j])
	})
}

// SortKeys sorts canonical variant strings; unparsable keys go last.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := Parse(keys[i])
		b, bErr := Parse(keys[j])
		switch {
		case aErr != nil && bErr != nil:
			return keys[i] < keys[j]
		case aErr != nil:
			return false
		case bErr != nil:
			return true
		}
		return a.Less(b)
	})
}

// Unique keeps the first occurrence of each variant and returns the result sorted.
func Unique(variants []Variant) []Variant {
	seen := make(map[Variant]bool, len(variants))
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	Sort(out)
	return out
}

// Set indexes variants by canonical key.
func Set(variants []Variant) map[string]Variant {
	set := make(map[string]Variant, len(variants))
	for _, v := range variants {
		set[v.Key()] = v
	}
	return set
}
