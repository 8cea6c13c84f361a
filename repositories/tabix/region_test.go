package tabix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	t.Run("should parse chr:start-end", func(t *testing.T) {
		r, err := ParseRegion("chr13:32315474-32400266")
		require.NoError(t, err)
		assert.Equal(t, "13", r.Chrom())
		assert.Equal(t, uint32(32315473), r.Start())
		assert.Equal(t, uint32(32400266), r.End())
		assert.Equal(t, "13:32315474-32400266", r.String())
	})

	t.Run("should reject an inverted interval", func(t *testing.T) {
		_, err := ParseRegion("1:200-100")
		assert.Error(t, err)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := ParseRegion("BRCA2")
		assert.Error(t, err)
	})

	t.Run("should clamp the start at 1", func(t *testing.T) {
		r, err := NewRegion("X", -50, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Begin)
	})

	t.Run("should keep index coordinates in range", func(t *testing.T) {
		r, err := NewRegion("1", 100, 1<<40)
		require.NoError(t, err)
		assert.Equal(t, MaxPosition, r.Stop)
		assert.Equal(t, uint32(MaxPosition), r.End())
		assert.Equal(t, MaxPosition-99, r.Span())

		_, err = ParseRegion("1:4294967297-4294967300")
		assert.Error(t, err)
	})
}

func TestMergeRegions(t *testing.T) {
	regions := []Region{
		{Chr: "2", Begin: 10, Stop: 10},
		{Chr: "1", Begin: 100, Stop: 200},
		{Chr: "1", Begin: 150, Stop: 300},
		{Chr: "1", Begin: 301, Stop: 301},
		{Chr: "X", Begin: 5, Stop: 5},
		{Chr: "2", Begin: 10, Stop: 10},
	}

	merged := MergeRegions(regions)

	assert.Equal(t, []Region{
		{Chr: "1", Begin: 100, Stop: 301},
		{Chr: "2", Begin: 10, Stop: 10},
		{Chr: "X", Begin: 5, Stop: 5},
	}, merged)
	assert.Nil(t, MergeRegions(nil))
}

func TestRegionContains(t *testing.T) {
	r := Region{Chr: "1", Begin: 100, Stop: 200}
	assert.True(t, r.Contains("chr1", 100))
	assert.True(t, r.Contains("1", 200))
	assert.False(t, r.Contains("1", 201))
	assert.False(t, r.Contains("2", 150))
}
