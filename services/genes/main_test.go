package genes

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
)

const geneTable = "Gene stable ID\tGene name\tChromosome/scaffold name\tGene start (bp)\tGene end (bp)\n" +
	"ENSG00000139618\tBRCA2\t13\t32315474\t32400266\n" +
	"ENSG00000141510\tTP53\t17\t7661779\t7687550\n" +
	"ENSG00000186092\tOR4F5\t1\t65419\t71585\n"

func TestResolve(t *testing.T) {
	r, err := Read(strings.NewReader(geneTable))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	t.Run("padding widens both sides", func(t *testing.T) {
		for _, p := range []int{0, 1, 5000, 250000} {
			rng, err := r.Resolve("BRCA2", p)
			require.NoError(t, err)
			assert.Equal(t, Range{Chr: "13", Start: 32315474 - p, End: 32400266 + p}, rng)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		rng, err := r.Resolve("brca2", 0)
		require.NoError(t, err)
		assert.Equal(t, 32315474, rng.Start)
	})

	t.Run("start clamps at 1", func(t *testing.T) {
		rng, err := r.Resolve("OR4F5", 100000)
		require.NoError(t, err)
		assert.Equal(t, 1, rng.Start)
		assert.Equal(t, 171585, rng.End)
	})

	t.Run("negative padding is rejected", func(t *testing.T) {
		_, err := r.Resolve("BRCA2", -1)
		assert.True(t, apierrors.IsParseError(err))
	})

	t.Run("unknown genes are not found", func(t *testing.T) {
		_, err := r.Resolve("NOTAGENE", 0)
		var notFound *apierrors.GeneNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "Gene NOTAGENE not found", err.Error())
	})

	t.Run("region", func(t *testing.T) {
		region, err := r.Region("TP53", 10)
		require.NoError(t, err)
		assert.Equal(t, "17:7661769-7687560", region.String())
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.tsv")
	require.NoError(t, os.WriteFile(path, []byte(geneTable), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	_, err = Read(strings.NewReader("Gene name\tstart\n"))
	assert.Error(t, err)
}

func TestLooksLikeGene(t *testing.T) {
	for _, q := range []string{"BRCA2", " tp53 \n", "RS1", "HLA-A"} {
		assert.True(t, LooksLikeGene(q), q)
	}
	for _, q := range []string{"1:1000:A:T", "rs12345", "BRCA2 TP53", "BRCA2\nTP53", ""} {
		assert.False(t, LooksLikeGene(q), q)
	}
}
