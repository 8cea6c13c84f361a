package common

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/require"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

// Headers of the in-memory resource tables used across package tests.
const (
	AssocHeader      = "#resource\tdataset\tdata_type\ttrait\tchr\tpos\tref\talt\tmlog10p\tbeta\tse"
	FinemappedHeader = "#resource\tdataset\tdata_type\ttrait\tchr\tpos\tref\talt\tmlog10p\tbeta\tse\tpip\tcs_size\tcs_min_r2\tmethod"
	LDHeader         = "#study_id\ttag_chrom\ttag_pos\ttag_ref\ttag_alt\tlead_pos\tlead_ref\tlead_alt\tbeta\todds_ratio\tpval\toverall_r2"
	GnomadHeader     = "#chr\tpos\tref\talt\trsid\tgenome_or_exome\tAN\tAF_afr\tAF_eas\tAF_fin\tAF_nfe\tfilters\tmost_severe\tgene_most_severe\tconsequences"

	GnomadFile = "gnomad.tsv.gz"
)

// InitConfig returns the default configuration with the cache placed in a
// per-test directory.
func InitConfig(t *testing.T) *models.Config {
	var cfg models.Config
	require.NoError(t, envconfig.Process("", &cfg))

	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.MaxSizeBytes = 1 << 20
	cfg.Resources = models.Resources{
		Gnomad: models.FrequencyDescriptor{File: GnomadFile, IdentityMarker: "v1"},
	}
	return &cfg
}

func AssocDescriptor(id string) models.ResourceDescriptor {
	return models.ResourceDescriptor{
		ID:             id,
		Category:       c.Assoc,
		File:           fmt.Sprintf("assoc_%s.tsv.gz", id),
		IdentityMarker: "v1",
	}
}

func FinemappedDescriptor(id string) models.ResourceDescriptor {
	return models.ResourceDescriptor{
		ID:             id,
		Category:       c.Finemapped,
		File:           fmt.Sprintf("finemapped_%s.tsv.gz", id),
		IdentityMarker: "v1",
		Method:         models.DefaultFinemappingMethod,
	}
}

func LDDescriptor(id string) models.ResourceDescriptor {
	return models.ResourceDescriptor{
		ID:             id,
		Category:       c.LDAssoc,
		File:           fmt.Sprintf("ld_%s.tsv.gz", id),
		IdentityMarker: "v1",
		Dataset:        id + "_22.09",
		DataTypes:      []string{"GWAS"},
	}
}

// AssocRow builds a row for AssocHeader from a variant id like 1:1000:A:T.
func AssocRow(resource, dataset, dataType, trait, v, mlog10p, beta, se string) string {
	return strings.Join([]string{resource, dataset, dataType, trait, locus(v), mlog10p, beta, se}, "\t")
}

func FinemappedRow(resource, dataset, dataType, trait, v, mlog10p, beta, se, pip, csSize, csMinR2, method string) string {
	return strings.Join([]string{resource, dataset, dataType, trait, locus(v), mlog10p, beta, se, pip, csSize, csMinR2, method}, "\t")
}

// LDRow builds a row for LDHeader. The lead variant is given as pos:ref:alt
// on the tag's chromosome.
func LDRow(study, tag, lead, beta, oddsRatio, pval, overallR2 string) string {
	return strings.Join([]string{study, locus(tag), strings.ReplaceAll(lead, ":", "\t"), beta, oddsRatio, pval, overallR2}, "\t")
}

// GnomadRow builds a row for GnomadHeader; afs are afr, eas, fin, nfe.
func GnomadRow(v, genomeOrExome, an string, afs [4]string, filters, mostSevere, gene, consequences string) string {
	fields := []string{locus(v), "rs1", genomeOrExome, an}
	fields = append(fields, afs[:]...)
	fields = append(fields, filters, mostSevere, gene, consequences)
	return strings.Join(fields, "\t")
}

// AddAssoc registers an association table for the descriptor.
func AddAssoc(store *tabix.MemoryStore, d models.ResourceDescriptor, rows ...string) *tabix.MemoryFile {
	return store.Add(d.File, AssocHeader, rows...)
}

func AddFinemapped(store *tabix.MemoryStore, d models.ResourceDescriptor, rows ...string) *tabix.MemoryFile {
	return store.Add(d.File, FinemappedHeader, rows...)
}

func AddLD(store *tabix.MemoryStore, d models.ResourceDescriptor, rows ...string) *tabix.MemoryFile {
	return store.Add(d.File, LDHeader, rows...)
}

func AddGnomad(store *tabix.MemoryStore, rows ...string) *tabix.MemoryFile {
	return store.Add(GnomadFile, GnomadHeader, rows...)
}

func locus(v string) string {
	parsed := variant.MustParse(v)
	return fmt.Sprintf("%s\t%d\t%s\t%s", parsed.Chr, parsed.Pos, parsed.Ref, parsed.Alt)
}
