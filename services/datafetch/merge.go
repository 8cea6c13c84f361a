package datafetch

import (
	"math"
	"sort"

	"github.com/ahmetb/go-linq"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/services/resources"
)

// Partial is what one source returned, together with the resource ids it
// was expected to cover.
type Partial struct {
	Resources []string
	Records   resources.Records
}

// Merge groups partial results by variant and ranks each group: association
// records by mlog10p, fine-mapping records by PIP, both descending with ties
// kept in source order. Association groups then get one placeholder per
// expected resource that had no row for the variant.
func Merge(cat constants.Category, partials []Partial) models.CategoryResult {
	result := models.EmptyCategoryResult(cat)

	expected := make([]string, 0)
	used := map[string]bool{}
	for _, p := range partials {
		expected = append(expected, p.Resources...)
		for key, recs := range p.Records {
			result.Data[key] = append(result.Data[key], recs...)
			for _, r := range recs {
				used[r.Resource] = true
			}
		}
	}

	for key, recs := range result.Data {
		switch cat {
		case c.Finemapped:
			sort.SliceStable(recs, func(i, j int) bool {
				return rank(recs[i].PIP.Float64, recs[i].PIP.Valid) > rank(recs[j].PIP.Float64, recs[j].PIP.Valid)
			})
		default:
			sort.SliceStable(recs, func(i, j int) bool {
				return rank(recs[i].Mlog10p.Float64, recs[i].Mlog10p.Valid) > rank(recs[j].Mlog10p.Float64, recs[j].Mlog10p.Valid)
			})
		}
		if cat == c.Assoc {
			recs = withPlaceholders(key, recs, expected)
		}
		result.Data[key] = recs
	}

	result.Resources = usedResources(cat, expected, used)
	return result
}

// withPlaceholders appends, after every real record, one placeholder per
// expected resource that has no record for the variant.
func withPlaceholders(key string, recs []models.ResourceRecord, expected []string) []models.ResourceRecord {
	present := make(map[string]bool, len(recs))
	for _, r := range recs {
		present[r.Resource] = true
	}

	var missing []string
	linq.From(expected).
		WhereT(func(id string) bool { return !present[id] }).
		Distinct().
		OrderByT(func(id string) string { return id }).
		ToSlice(&missing)

	for _, id := range missing {
		recs = append(recs, models.NewPlaceholder(key, id))
	}
	return recs
}

// usedResources lists the resources that contributed at least one record:
// alphabetically for association, in configuration order otherwise.
func usedResources(cat constants.Category, expected []string, used map[string]bool) []string {
	out := []string{}
	query := linq.From(expected).WhereT(func(id string) bool { return used[id] }).Distinct()
	if cat == c.Assoc {
		query = query.OrderByT(func(id string) string { return id }).Query
	}
	query.ToSlice(&out)

	// records may name resources outside the expected list
	extra := []string{}
	for id := range used {
		if !linq.From(expected).Contains(id) {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// SortedKeys returns the variant keys of a result in genomic order.
func SortedKeys(res models.CategoryResult) []string {
	keys := make([]string, 0, len(res.Data))
	for k := range res.Data {
		keys = append(keys, k)
	}
	variant.SortKeys(keys)
	return keys
}

func rank(value float64, valid bool) float64 {
	if !valid || math.IsNaN(value) {
		return math.Inf(-1)
	}
	return value
}
