package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE trait (
	resource TEXT, data_type TEXT, trait_type TEXT, phenocode TEXT, phenostring TEXT, category TEXT,
	num_samples INTEGER, num_cases INTEGER, num_controls INTEGER, pub_author TEXT, pub_date TEXT
);
CREATE TABLE dataset (
	dataset_id TEXT, resource TEXT, data_type TEXT, description TEXT, version TEXT
);`

func newStore(t *testing.T, traits int) *MetadataStore {
	path := filepath.Join(t.TempDir(), "metadata.db")

	db, err := sqlx.Connect("sqlite3", path)
	require.NoError(t, err)
	db.MustExec(schema)

	tx := db.MustBegin()
	for i := 0; i < traits; i++ {
		tx.MustExec(`INSERT INTO trait VALUES (?, 'GWAS', 'binary', ?, ?, 'Diseases', 1000, ?, ?, NULL, NULL)`,
			"FinnGen", fmt.Sprintf("T%d", i), fmt.Sprintf("Trait %d", i), i, 1000-i)
	}
	tx.MustExec(`INSERT INTO trait VALUES ('UKBB', 'GWAS', NULL, 'T1', NULL, NULL, NULL, NULL, NULL, 'Smith', '2020')`)
	tx.MustExec(`INSERT INTO dataset VALUES ('FinnGen_R12', 'FinnGen', 'GWAS', 'FinnGen release 12', 'R12')`)
	require.NoError(t, tx.Commit())
	require.NoError(t, db.Close())

	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTraits(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 250)

	t.Run("pairs match on resource and phenocode", func(t *testing.T) {
		traits, err := store.Traits(ctx, []TraitKey{
			{Resource: "UKBB", Phenocode: "T1"},
			{Resource: "FinnGen", Phenocode: "T2"},
			{Resource: "FinnGen", Phenocode: "missing"},
		})
		require.NoError(t, err)
		require.Len(t, traits, 2)

		byResource := map[string]Trait{}
		for _, tr := range traits {
			byResource[tr.Resource] = tr
		}
		assert.Equal(t, "Trait 2", byResource["FinnGen"].Phenostring.String)
		assert.Equal(t, int64(998), byResource["FinnGen"].NumControls.Int64)
		assert.False(t, byResource["UKBB"].Phenostring.Valid)
		assert.Equal(t, "Smith", byResource["UKBB"].PubAuthor.String)
	})

	t.Run("keys beyond one chunk are all looked up", func(t *testing.T) {
		keys := make([]TraitKey, 0, 250)
		for i := 0; i < 250; i++ {
			keys = append(keys, TraitKey{Resource: "FinnGen", Phenocode: fmt.Sprintf("T%d", i)})
		}
		traits, err := store.Traits(ctx, keys)
		require.NoError(t, err)
		assert.Len(t, traits, 250)
	})

	t.Run("no keys", func(t *testing.T) {
		traits, err := store.Traits(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, traits)
	})
}

func TestDataset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 0)

	d, err := store.Dataset(ctx, "FinnGen_R12")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "R12", d.Version.String)

	d, err = store.Dataset(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestOpenIsReadOnly(t *testing.T) {
	store := newStore(t, 1)
	_, err := store.DB.Exec(`DELETE FROM trait`)
	assert.Error(t, err)
}
