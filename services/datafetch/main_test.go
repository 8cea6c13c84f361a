package datafetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/resources"
	"github.com/fulltiltgenomics/genetics-results-api/tests/common"
)

var (
	target    = variant.MustParse("1:1000:A:T")
	neighbour = variant.MustParse("1:1000:A:C")
	assocIDs  = []string{"FinnGen", "UKBB", "GTEx", "eQTL_Catalogue", "Open_Targets"}
	assocRows = map[string][]string{
		"FinnGen": {
			common.AssocRow("FinnGen", "FinnGen_R12", "GWAS", "T2D", "1:1000:A:T", "8.5", "0.12", "0.02"),
			common.AssocRow("FinnGen", "FinnGen_R12", "GWAS", "BMI", "1:1000:A:T", "3.0", "0.03", "0.01"),
			common.AssocRow("FinnGen", "FinnGen_R12", "GWAS", "T2D", "1:1000:A:C", "0.5", "0.01", "0.02"),
		},
		"GTEx": {
			common.AssocRow("GTEx", "GTEx_v8", "eQTL", "ENSG01", "1:1000:A:T", "12.0", "0.4", "0.05"),
			common.AssocRow("GTEx", "GTEx_v8", "eQTL", "ENSG01", "1:1000:A:C", "1.0", "0.1", "0.05"),
		},
	}
)

func newAssocFetcher(t *testing.T, limit int) (*Fetcher, *tabix.MemoryStore) {
	store := tabix.NewMemoryStore()
	descriptors := make([]models.ResourceDescriptor, 0, len(assocIDs))
	for _, id := range assocIDs {
		d := common.AssocDescriptor(id)
		common.AddAssoc(store, d, assocRows[id]...)
		descriptors = append(descriptors, d)
	}

	adapters, err := resources.NewRegistry(store).Build(descriptors)
	require.NoError(t, err)
	return NewFetcher(c.Assoc, Sources(adapters), limit, nil), store
}

func TestFetchVariants(t *testing.T) {
	ctx := context.Background()

	t.Run("placeholders complete every configured resource", func(t *testing.T) {
		f, _ := newAssocFetcher(t, 0)
		res := f.FetchVariants(ctx, []variant.Variant{target})

		recs := res.Data[target.Key()]
		require.Len(t, recs, 2+1+3)

		perResource := map[string]int{}
		lastReal := -1
		firstPlaceholder := len(recs)
		for i, r := range recs {
			perResource[r.Resource]++
			if r.Placeholder {
				if i < firstPlaceholder {
					firstPlaceholder = i
				}
				assert.Equal(t, models.Missing, r.Dataset)
				assert.Equal(t, models.Missing, r.DataType)
				assert.Equal(t, models.Missing, r.Phenocode)
				assert.Equal(t, -1.0, r.Mlog10p.Float64)
				assert.Equal(t, 0.0, r.Beta.Float64)
				assert.Equal(t, 0.0, r.SE.Float64)
			} else {
				lastReal = i
			}
		}
		assert.Less(t, lastReal, firstPlaceholder)
		for _, id := range assocIDs {
			assert.NotZero(t, perResource[id], id)
		}

		// ranked by significance
		assert.Equal(t, "GTEx", recs[0].Resource)
		assert.Equal(t, 12.0, recs[0].Mlog10p.Float64)
		assert.Equal(t, 8.5, recs[1].Mlog10p.Float64)
		assert.Equal(t, 3.0, recs[2].Mlog10p.Float64)

		assert.Equal(t, []string{"FinnGen", "GTEx"}, res.Resources)
		assert.Empty(t, res.Failed)
	})

	t.Run("a variant present in 2 of 5 resources has 5 entries", func(t *testing.T) {
		f, _ := newAssocFetcher(t, 0)
		res := f.FetchVariants(ctx, []variant.Variant{neighbour})

		recs := res.Data[neighbour.Key()]
		require.Len(t, recs, 5)
		assert.Equal(t, "GTEx", recs[0].Resource)
		assert.Equal(t, "FinnGen", recs[1].Resource)
		for _, r := range recs[2:] {
			assert.True(t, r.Placeholder)
		}
	})

	t.Run("multiallelic sites never collide", func(t *testing.T) {
		f, _ := newAssocFetcher(t, 0)
		res := f.FetchVariants(ctx, []variant.Variant{target, neighbour})

		require.Contains(t, res.Data, "1:1000:A:T")
		require.Contains(t, res.Data, "1:1000:A:C")
		for _, r := range res.Data["1:1000:A:C"] {
			assert.Equal(t, "1:1000:A:C", r.Variant)
		}
		assert.Equal(t, []string{"1:1000:A:C", "1:1000:A:T"}, SortedKeys(res))
	})

	t.Run("a failing source is isolated", func(t *testing.T) {
		f, store := newAssocFetcher(t, 2)
		broken, err := store.Open(common.AssocDescriptor("GTEx").File)
		require.NoError(t, err)
		broken.(*tabix.MemoryFile).Err = errors.New("bgzf: corrupt block")

		var res models.CategoryResult
		assert.NotPanics(t, func() {
			res = f.FetchVariants(ctx, []variant.Variant{target})
		})

		assert.Equal(t, []string{"GTEx"}, res.Failed)
		recs := res.Data[target.Key()]
		// 2 FinnGen rows + placeholders for the three healthy empty sources
		require.Len(t, recs, 5)
		for _, r := range recs {
			assert.NotEqual(t, "GTEx", r.Resource)
		}
		assert.Equal(t, []string{"FinnGen"}, res.Resources)
	})

	t.Run("unknown variants are absent", func(t *testing.T) {
		f, _ := newAssocFetcher(t, 0)
		res := f.FetchVariants(ctx, []variant.Variant{variant.MustParse("7:1:G:C")})
		assert.Empty(t, res.Data)
		assert.Empty(t, res.Resources)
	})
}

func TestFetchRangesFinemapped(t *testing.T) {
	store := tabix.NewMemoryStore()
	ot := common.FinemappedDescriptor("Open_Targets")
	fg := common.FinemappedDescriptor("FinnGen")
	common.AddFinemapped(store, ot,
		common.FinemappedRow("Open_Targets", "OT_22", "gwas", "T2D", "2:500:G:A", "NA", "NA", "NA", "0.40", "4", "0.8", "SuSiE-inf"),
	)
	common.AddFinemapped(store, fg,
		common.FinemappedRow("FinnGen", "FinnGen_R12", "GWAS", "T2D", "2:500:G:A", "9.1", "0.2", "0.01", "0.95", "2", "0.9", "SuSiE-inf"),
		common.FinemappedRow("FinnGen", "FinnGen_R12", "GWAS", "T2D", "2:900:C:T", "5.1", "0.2", "0.01", "0.15", "2", "0.9", "SuSiE-inf"),
	)

	adapters, err := resources.NewRegistry(store).Build([]models.ResourceDescriptor{ot, fg})
	require.NoError(t, err)
	f := NewFetcher(c.Finemapped, Sources(adapters), 0, nil)

	res := f.FetchRanges(context.Background(), []tabix.Region{{Chr: "2", Begin: 1, Stop: 600}})

	recs := res.Data["2:500:G:A"]
	require.Len(t, recs, 2)
	assert.Equal(t, "FinnGen", recs[0].Resource)
	assert.Equal(t, 0.95, recs[0].PIP.Float64)
	assert.Equal(t, 0.40, recs[1].PIP.Float64)
	for _, r := range recs {
		assert.False(t, r.Placeholder)
	}
	assert.NotContains(t, res.Data, "2:900:C:T")

	// configuration order, not alphabetical
	assert.Equal(t, []string{"Open_Targets", "FinnGen"}, res.Resources)
	assert.Equal(t, []string{"Open_Targets=v1|finemapped_Open_Targets.tsv.gz|v1", "FinnGen=v1|finemapped_FinnGen.tsv.gz|v1"}, f.Identities())
}
