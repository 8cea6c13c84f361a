package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
)

func TestParse(t *testing.T) {
	t.Run("canonical form round trips", func(t *testing.T) {
		for _, text := range []string{"1:1000:A:T", "X:155:GA:G", "MT:3:C:CTT", "22:1:N:*"} {
			v, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, v.String())

			again, err := Parse(v.String())
			require.NoError(t, err)
			assert.Equal(t, v, again)
		}
	})

	t.Run("other delimiters and prefixes normalize", func(t *testing.T) {
		for _, text := range []string{"chr1-1000-a-t", "1_1000_A_T", "1 1000 A T", "chr1:1000:A/T"} {
			v, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, "1:1000:A:T", v.String())
		}

		v, err := Parse("23:5:A:G")
		require.NoError(t, err)
		assert.Equal(t, "X", v.Chr)
	})

	t.Run("malformed input names the accepted formats", func(t *testing.T) {
		for _, text := range []string{"1:1000:A", "1:abc:A:T", "1:0:A:T", "1:5:A:Q", ""} {
			_, err := Parse(text)
			require.Error(t, err, text)
			assert.True(t, apierrors.IsParseError(err), text)
		}

		_, err := Parse("1:1000:A")
		assert.Contains(t, err.Error(), apierrors.AcceptedFormats)
	})

	t.Run("repeated delimiters leave an empty part", func(t *testing.T) {
		for _, text := range []string{"1:-5:A:T", "1::1000:A:T", "1:1000::A:T", "1:1000:A:T:", ":1:1000:A:T", "1--1000-A-T", "1:+5:A:T"} {
			_, err := Parse(text)
			require.Error(t, err, text)
			assert.True(t, apierrors.IsParseError(err), text)
		}
	})
}

func TestEqualityAndOrder(t *testing.T) {
	t.Run("multiallelic sites stay distinct", func(t *testing.T) {
		a := MustParse("1:1000:A:T")
		b := MustParse("1:1000:A:C")
		assert.NotEqual(t, a, b)
		assert.Len(t, Set([]Variant{a, b}), 2)
	})

	t.Run("chromosomes sort numerically then letters", func(t *testing.T) {
		vs := []Variant{
			MustParse("X:1:A:T"),
			MustParse("10:5:A:T"),
			MustParse("2:50:A:T"),
			MustParse("2:5:C:T"),
			MustParse("2:5:A:T"),
		}
		Sort(vs)

		got := make([]string, 0, len(vs))
		for _, v := range vs {
			got = append(got, v.String())
		}
		assert.Equal(t, []string{"2:5:A:T", "2:5:C:T", "2:50:A:T", "10:5:A:T", "X:1:A:T"}, got)
	})

	t.Run("sort keys puts unparsable keys last", func(t *testing.T) {
		keys := []string{"junk", "10:1:A:T", "9:1:A:T"}
		SortKeys(keys)
		assert.Equal(t, []string{"9:1:A:T", "10:1:A:T", "junk"}, keys)
	})

	t.Run("unique drops repeats", func(t *testing.T) {
		vs := Unique([]Variant{MustParse("2:1:A:T"), MustParse("1:1:A:T"), MustParse("2:1:A:T")})
		assert.Equal(t, []Variant{MustParse("1:1:A:T"), MustParse("2:1:A:T")}, vs)
	})
}
