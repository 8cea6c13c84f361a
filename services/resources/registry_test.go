package resources

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/tests/common"
)

func TestRegistry(t *testing.T) {
	store := tabix.NewMemoryStore()
	finngen := common.AssocDescriptor("FinnGen")
	ukbb := common.AssocDescriptor("UKBB")
	common.AddAssoc(store, finngen)
	common.AddAssoc(store, ukbb)

	t.Run("builds each adapter once under concurrency", func(t *testing.T) {
		reg := NewRegistry(store)

		var wg sync.WaitGroup
		got := make([]*Adapter, 16)
		for i := range got {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, err := reg.Get(finngen)
				assert.NoError(t, err)
				got[i] = a
			}(i)
		}
		wg.Wait()

		for _, a := range got {
			assert.Same(t, got[0], a)
		}
	})

	t.Run("same id in another category is a different adapter", func(t *testing.T) {
		reg := NewRegistry(store)
		fm := common.FinemappedDescriptor("FinnGen")
		common.AddFinemapped(store, fm)

		a, err := reg.Get(finngen)
		require.NoError(t, err)
		b, err := reg.Get(fm)
		require.NoError(t, err)
		assert.NotSame(t, a, b)
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		reg := NewRegistry(store)

		_, err := reg.Build([]models.ResourceDescriptor{finngen, ukbb, finngen})
		var initErr *apierrors.ResourceInitError
		require.True(t, errors.As(err, &initErr))
		assert.Equal(t, "FinnGen", initErr.Resource)

		clash := ukbb
		clash.ID = "FinnGen"
		_, err = reg.Get(clash)
		assert.True(t, errors.As(err, &initErr))
	})

	t.Run("build keeps configuration order", func(t *testing.T) {
		reg := NewRegistry(store)
		adapters, err := reg.Build([]models.ResourceDescriptor{ukbb, finngen})
		require.NoError(t, err)
		require.Len(t, adapters, 2)
		assert.Equal(t, "UKBB", adapters[0].ID())
		assert.Equal(t, "FinnGen", adapters[1].ID())
	})

	t.Run("construction errors are sticky", func(t *testing.T) {
		reg := NewRegistry(store)
		missing := common.AssocDescriptor("Missing")

		_, err1 := reg.Get(missing)
		_, err2 := reg.Get(missing)
		assert.Error(t, err1)
		assert.Equal(t, err1, err2)
	})
}
