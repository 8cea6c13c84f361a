package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/guregu/null.v3"
)

// sqlite caps bound parameters; two per trait key
const traitChunkSize = 100

type (
	// MetadataStore is a read-only lookup of descriptive trait and dataset
	// metadata.
	MetadataStore struct {
		DB *sqlx.DB
	}

	TraitKey struct {
		Resource  string `json:"resource"`
		Phenocode string `json:"phenocode"`
	}

	Trait struct {
		Resource    string      `db:"resource" json:"resource"`
		DataType    string      `db:"data_type" json:"data_type"`
		TraitType   null.String `db:"trait_type" json:"trait_type"`
		Phenocode   string      `db:"phenocode" json:"phenocode"`
		Phenostring null.String `db:"phenostring" json:"phenostring"`
		Category    null.String `db:"category" json:"category"`
		NumSamples  null.Int    `db:"num_samples" json:"num_samples"`
		NumCases    null.Int    `db:"num_cases" json:"num_cases"`
		NumControls null.Int    `db:"num_controls" json:"num_controls"`
		PubAuthor   null.String `db:"pub_author" json:"pub_author"`
		PubDate     null.String `db:"pub_date" json:"pub_date"`
	}

	Dataset struct {
		DatasetID   string      `db:"dataset_id" json:"dataset_id"`
		Resource    string      `db:"resource" json:"resource"`
		DataType    string      `db:"data_type" json:"data_type"`
		Description null.String `db:"description" json:"description"`
		Version     null.String `db:"version" json:"version"`
	}
)

// Open connects read-only. Data disks can be slow to mount so the first
// connection is retried.
func Open(path string) (*MetadataStore, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)

	var db *sqlx.DB
	connect := func() error {
		var err error
		db, err = sqlx.Connect("sqlite3", dsn)
		return err
	}
	if err := backoff.Retry(connect, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
		return nil, pfx.Err(err)
	}

	return &MetadataStore{DB: db}, nil
}

func (m *MetadataStore) Close() error {
	return m.DB.Close()
}

// Traits looks up trait metadata for (resource, phenocode) pairs. Unknown
// pairs are silently absent from the result.
func (m *MetadataStore) Traits(ctx context.Context, keys []TraitKey) ([]Trait, error) {
	out := make([]Trait, 0, len(keys))

	for i := 0; i < len(keys); i += traitChunkSize {
		end := i + traitChunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[i:end]

		conditions := make([]string, 0, len(chunk))
		params := make([]interface{}, 0, 2*len(chunk))
		for _, k := range chunk {
			conditions = append(conditions, "(resource = ? AND phenocode = ?)")
			params = append(params, k.Resource, k.Phenocode)
		}

		query := `SELECT resource, data_type, trait_type, phenocode, phenostring, category,
			num_samples, num_cases, num_controls, pub_author, pub_date
			FROM trait WHERE ` + strings.Join(conditions, " OR ")

		var traits []Trait
		if err := m.DB.SelectContext(ctx, &traits, query, params...); err != nil {
			return nil, pfx.Err(err)
		}
		out = append(out, traits...)
	}

	return out, nil
}

// Dataset returns nil without error when the id is unknown.
func (m *MetadataStore) Dataset(ctx context.Context, id string) (*Dataset, error) {
	var datasets []Dataset
	err := m.DB.SelectContext(ctx, &datasets,
		`SELECT dataset_id, resource, data_type, description, version FROM dataset WHERE dataset_id = ? LIMIT 1`, id)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(datasets) == 0 {
		return nil, nil
	}
	return &datasets[0], nil
}
