package frequency

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/tests/common"
)

const brca2Csq = `[{"gene_symbol":"BRCA2","gene_id":"ENSG00000139618","consequences":["missense_variant","splice_region_variant"]},` +
	`{"gene_symbol":"BRCA2","gene_id":"ENSG00000139618","consequences":["missense_variant"]},` +
	`{"gene_symbol":"ZAR1L","gene_id":"ENSG00000189167","consequences":["upstream_gene_variant"]}]`

func newService(t *testing.T) (*Service, *tabix.MemoryFile) {
	store := tabix.NewMemoryStore()
	file := common.AddGnomad(store,
		// exomes carry more alleles: exomes preferred
		common.GnomadRow("13:32900000:G:A", "e", "250000", [4]string{"0.01", "0.2", "0.05", "0.1"}, "PASS", "missense_variant", "BRCA2", brca2Csq),
		common.GnomadRow("13:32900000:G:A", "g", "150000", [4]string{"0.3", "0.02", "0.05", "0.1"}, "PASS", "missense_variant", "BRCA2", brca2Csq),
		// genomes only
		common.GnomadRow("13:32900100:C:T", "g", "150000", [4]string{"0.001", "0.002", "0.5", "NA"}, "PASS", "synonymous_variant", "BRCA2", "NA"),
		// AC0 in both
		common.GnomadRow("13:32900200:A:G", "e", "1000", [4]string{"0", "0", "0", "0"}, "AC0", "intron_variant", "BRCA2", "NA"),
		common.GnomadRow("13:32900200:A:G", "g", "2000", [4]string{"0", "0", "0", "0"}, "AC0;RF", "intron_variant", "BRCA2", "NA"),
		// another gene
		common.GnomadRow("13:32900300:T:C", "e", "1000", [4]string{"0.1", "0.1", "0.1", "0.1"}, "PASS", "upstream_gene_variant", "ZAR1L", "NA"),
	)

	cfg := common.InitConfig(t)
	s, err := NewService(cfg.Resources.Gnomad, store)
	require.NoError(t, err)
	return s, file
}

func TestFetchVariants(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)
	assert.Equal(t, []string{"afr", "eas", "fin", "nfe"}, s.Populations())

	t.Run("prefers exomes only with the larger allele count", func(t *testing.T) {
		res, err := s.FetchVariants(ctx, []variant.Variant{
			variant.MustParse("13:32900000:G:A"),
			variant.MustParse("13:32900100:C:T"),
			variant.MustParse("13:32900200:A:G"),
		}, "")
		require.NoError(t, err)

		assert.Equal(t, []string{"13:32900000:G:A", "13:32900100:C:T", "13:32900200:A:G"}, res.FoundVariants)
		assert.Equal(t, []string{"13:32900200:A:G"}, res.AC0Variants)

		both := res.Data["13:32900000:G:A"]
		assert.Equal(t, models.Exomes, both.Preferred)
		assert.Equal(t, 250000, both.Exomes.AN)
		assert.Equal(t, "missense", both.Exomes.MostSevere)
		assert.Equal(t, &models.PopulationFrequency{Pop: "eas", AF: 0.2}, both.Exomes.Popmax)
		assert.Equal(t, &models.PopulationFrequency{Pop: "afr", AF: 0.01}, both.Exomes.Popmin)
		assert.Equal(t, &models.PopulationFrequency{Pop: "afr", AF: 0.3}, both.Genomes.Popmax)

		assert.Equal(t, []models.Consequence{
			{GeneSymbol: "BRCA2", Consequence: "missense"},
			{GeneSymbol: "BRCA2", Consequence: "splice region"},
			{GeneSymbol: "ZAR1L", Consequence: "upstream gene"},
		}, both.Exomes.Consequences)

		genomesOnly := res.Data["13:32900100:C:T"]
		assert.Equal(t, models.Genomes, genomesOnly.Preferred)
		assert.Nil(t, genomesOnly.Exomes)
		assert.False(t, genomesOnly.Genomes.AF["nfe"].Valid)
		assert.Empty(t, genomesOnly.Genomes.Consequences)

		ac0 := res.Data["13:32900200:A:G"]
		assert.Equal(t, models.Genomes, ac0.Preferred)
		// all frequencies zero: nothing beats the starting values
		assert.Equal(t, models.Missing, ac0.Genomes.Popmax.Pop)
		assert.Equal(t, 0.0, ac0.Genomes.Popmax.AF)
		assert.Equal(t, "afr", ac0.Genomes.Popmin.Pop)
	})

	t.Run("summary counts extremes over the preferred sub-dataset", func(t *testing.T) {
		res, err := s.FetchVariants(ctx, []variant.Variant{
			variant.MustParse("13:32900000:G:A"),
			variant.MustParse("13:32900100:C:T"),
		}, "")
		require.NoError(t, err)

		byPop := map[string]models.PopulationSummary{}
		for _, p := range res.FreqSummary {
			byPop[p.Pop] = p
		}
		require.Len(t, byPop, 4)
		// exomes of the first variant: max eas, min afr; genomes of the second: max fin, min afr
		assert.Equal(t, 1, byPop["eas"].Max)
		assert.Equal(t, 0.5, byPop["eas"].MaxPerc)
		assert.Equal(t, 1, byPop["fin"].Max)
		assert.Equal(t, 0, byPop["afr"].Max)
		assert.Equal(t, 2, byPop["afr"].Min)
		assert.Equal(t, 1.0, byPop["afr"].MinPerc)
	})

	t.Run("gene filter drops other genes", func(t *testing.T) {
		res, err := s.FetchRanges(ctx, []tabix.Region{{Chr: "13", Begin: 32899000, Stop: 32901000}}, "brca2")
		require.NoError(t, err)
		assert.Len(t, res.FoundVariants, 3)
		assert.NotContains(t, res.Data, "13:32900300:T:C")
	})

	t.Run("nothing found is a not-found error", func(t *testing.T) {
		_, err := s.FetchVariants(ctx, []variant.Variant{variant.MustParse("1:1:A:C")}, "")
		assert.True(t, apierrors.IsNotFound(err))

		_, err = s.FetchRanges(ctx, []tabix.Region{{Chr: "13", Begin: 32899000, Stop: 32901000}}, "TP53")
		assert.True(t, apierrors.IsNotFound(err))
	})
}

func TestFetchFailure(t *testing.T) {
	s, file := newService(t)
	file.Err = errors.New("truncated file")

	_, err := s.FetchVariants(context.Background(), []variant.Variant{variant.MustParse("13:32900000:G:A")}, "")
	var dataErr *apierrors.DataAccessError
	assert.True(t, errors.As(err, &dataErr))
}

func TestSummarize(t *testing.T) {
	t.Run("empty input degrades to an empty summary", func(t *testing.T) {
		assert.Empty(t, Summarize(map[string]*models.FrequencyResult{}, []string{"afr"}))
	})

	t.Run("a missing preferred record degrades to an empty summary", func(t *testing.T) {
		data := map[string]*models.FrequencyResult{
			"1:1:A:C": {Preferred: models.Exomes},
		}
		summary := Summarize(data, []string{"afr"})
		assert.NotNil(t, summary)
		assert.Empty(t, summary)
	})
}

func TestStreamVariants(t *testing.T) {
	s, _ := newService(t)

	var buf bytes.Buffer
	err := s.StreamVariants(context.Background(), &buf,
		tabix.Region{Chr: "13", Begin: 32899000, Stop: 32901000},
		[]variant.Variant{variant.MustParse("13:32900100:C:T"), variant.MustParse("13:32900300:T:C")})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, common.GnomadHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "13\t32900100\tC\tT\t"))
	assert.True(t, strings.HasPrefix(lines[2], "13\t32900300\tT\tC\t"))
}
