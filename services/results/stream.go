package results

import (
	"context"
	"errors"
	"io"

	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/sqlite"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/resources"
)

// StreamErrorMarker ends a raw stream that broke after the response started.
const StreamErrorMarker = "!error: failed to read"

var (
	ErrNoGeneModel = errors.New("no gene model configured")
	ErrNoMetadata  = errors.New("no metadata database configured")
)

// Streamers converts adapters to the Streamer interface.
func Streamers(adapters []*resources.Adapter) []Streamer {
	out := make([]Streamer, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a)
	}
	return out
}

// CredibleSetRegion resolves the region StreamCredibleSets will read. It is
// split out so callers can reject unknown genes before writing anything.
func (s *Service) CredibleSetRegion(gene string, padding int) (tabix.Region, error) {
	return s.geneRegion(gene, padding)
}

// StreamCredibleSets writes the raw fine-mapping rows of the region from every
// fine-mapping resource, with the header of the first one.
func (s *Service) StreamCredibleSets(ctx context.Context, w io.Writer, region tabix.Region) error {
	for i, src := range s.CredibleSets {
		if err := src.Stream(ctx, w, region, i == 0); err != nil {
			return streamFailed(w, err)
		}
	}
	return nil
}

// StreamGeneModel proxies the gene model file for a region.
func (s *Service) StreamGeneModel(ctx context.Context, w io.Writer, region tabix.Region) error {
	if s.GeneModel == nil {
		return ErrNoGeneModel
	}
	if err := s.GeneModel.Stream(ctx, w, region, true); err != nil {
		return streamFailed(w, &apierrors.DataAccessError{Resource: "gene_model", Err: err})
	}
	return nil
}

// ParseVariants validates a list of variant ids up front.
func ParseVariants(ids []string) ([]variant.Variant, error) {
	out := make([]variant.Variant, 0, len(ids))
	for _, id := range ids {
		v, err := variant.Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// StreamVariantAnnotation writes the frequency rows of the region that belong
// to one of the variants.
func (s *Service) StreamVariantAnnotation(ctx context.Context, w io.Writer, region tabix.Region, variants []variant.Variant) error {
	if err := s.Frequency.StreamVariants(ctx, w, region, variants); err != nil {
		return streamFailed(w, err)
	}
	return nil
}

// TraitMetadata looks up descriptive metadata for (resource, phenocode) pairs.
func (s *Service) TraitMetadata(ctx context.Context, keys []sqlite.TraitKey) ([]sqlite.Trait, error) {
	if s.Metadata == nil {
		return nil, ErrNoMetadata
	}
	traits, err := s.Metadata.Traits(ctx, keys)
	if err != nil {
		return nil, &apierrors.DataAccessError{Resource: "metadata", Err: err}
	}
	return traits, nil
}

func (s *Service) Dataset(ctx context.Context, id string) (*sqlite.Dataset, error) {
	if s.Metadata == nil {
		return nil, ErrNoMetadata
	}
	d, err := s.Metadata.Dataset(ctx, id)
	if err != nil {
		return nil, &apierrors.DataAccessError{Resource: "metadata", Err: err}
	}
	if d == nil {
		return nil, &apierrors.NotFoundError{Message: "Dataset " + id + " not found"}
	}
	return d, nil
}

func streamFailed(w io.Writer, err error) error {
	var dataErr *apierrors.DataAccessError
	if errors.As(err, &dataErr) {
		log.Errorf("stream failed: %s", dataErr.Detail())
	} else {
		log.Errorf("stream failed: %v", err)
	}
	if _, werr := io.WriteString(w, StreamErrorMarker); werr != nil {
		log.Debugf("cannot write stream error marker: %v", werr)
	}
	return err
}
