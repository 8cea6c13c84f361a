package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	qm "github.com/fulltiltgenomics/genetics-results-api/models/constants/query-mode"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
)

func TestParseSingle(t *testing.T) {
	inputs := []string{
		"1:1000:A:T\n2-2000-C-G\n1:1000:A:T",
		"1:1000:A:T 2:2000:C:G",
		"1:1000:A:T, 2-2000-C-G,\r\n",
		"chr1:1000:a:t\t2_2000_C_G",
	}
	for _, in := range inputs {
		q, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, qm.Single, q.Mode, in)
		require.Len(t, q.Items, 2, in)
		assert.Equal(t, "1:1000:A:T", q.Items[0].Variant.String())
		assert.Equal(t, "2:2000:C:G", q.Items[1].Variant.String())
		assert.False(t, q.Items[0].Beta.Valid)
	}
}

func TestParseGroup(t *testing.T) {
	t.Run("variant and beta", func(t *testing.T) {
		q, err := Parse("1:1000:A:T 0.5\n2:2000:C:G,-1.25\n")
		require.NoError(t, err)
		assert.Equal(t, qm.Group, q.Mode)
		require.Len(t, q.Items, 2)
		assert.Equal(t, 0.5, q.Items[0].Beta.Float64)
		assert.Equal(t, -1.25, q.Items[1].Beta.Float64)
		assert.False(t, q.Items[0].Custom.Valid)
	})

	t.Run("custom values", func(t *testing.T) {
		q, err := Parse("1:1000:A:T 0.5 groupA\n2:2000:C:G 1 groupB")
		require.NoError(t, err)
		assert.Equal(t, "groupA", q.Items[0].Custom.String)
		assert.Equal(t, "groupB", q.Items[1].Custom.String)
	})

	t.Run("variants are distinct and sorted", func(t *testing.T) {
		q, err := Parse("2:2000:C:G 1\n1:1000:A:T 0.5\n2:2000:C:G 2")
		require.NoError(t, err)
		assert.Len(t, q.Items, 3)
		assert.Equal(t, []variant.Variant{variant.MustParse("1:1000:A:T"), variant.MustParse("2:2000:C:G")}, q.Variants())
	})

	t.Run("non-numeric beta", func(t *testing.T) {
		_, err := Parse("1:1000:A:T 0.5\n2:2000:C:G abc")
		require.Error(t, err)
		assert.True(t, apierrors.IsParseError(err))
		assert.Contains(t, err.Error(), "not numeric")
	})

	t.Run("missing beta", func(t *testing.T) {
		_, err := Parse("1:1000:A:T 0.5\n2:2000:C:G")
		assert.True(t, apierrors.IsParseError(err))
	})
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "  \n ", "not-a-variant", "1:abc:A:T", "rs123 rs456"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, apierrors.IsParseError(err), in)
	}

	_, err := Parse("1:1000:A")
	assert.Contains(t, err.Error(), apierrors.AcceptedFormats)

	_, err = Parse("rs429358")
	assert.Contains(t, err.Error(), "rsids")
}
