package resources

import (
	"fmt"
	"sync"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

type (
	// Registry constructs each adapter at most once per (category, resource id)
	// for the process lifetime.
	Registry struct {
		store tabix.Store

		mu      sync.Mutex
		entries map[string]*registryEntry
	}

	registryEntry struct {
		once       sync.Once
		descriptor models.ResourceDescriptor
		adapter    *Adapter
		err        error
	}
)

func NewRegistry(store tabix.Store) *Registry {
	return &Registry{
		store:   store,
		entries: map[string]*registryEntry{},
	}
}

// Get returns the adapter for the descriptor, building it on first use.
// Asking again with a different file or version under an id that is already
// taken is a ResourceInitError.
func (r *Registry) Get(d models.ResourceDescriptor) (*Adapter, error) {
	key := registryKey(d.Category, d.ID)

	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		entry = &registryEntry{descriptor: d}
		r.entries[key] = entry
	}
	r.mu.Unlock()

	if ok && (entry.descriptor.File != d.File || entry.descriptor.IdentityMarker != d.IdentityMarker) {
		return nil, &apierrors.ResourceInitError{
			Resource: d.ID,
			Reason:   fmt.Sprintf("duplicate %s resource id, already registered for %s", d.Category, entry.descriptor.File),
		}
	}

	entry.once.Do(func() {
		entry.adapter, entry.err = NewAdapter(d, r.store)
	})
	return entry.adapter, entry.err
}

// Build returns the adapters of one category in configuration order. An id
// repeated within the list is a ResourceInitError.
func (r *Registry) Build(descriptors []models.ResourceDescriptor) ([]*Adapter, error) {
	seen := map[string]bool{}
	adapters := make([]*Adapter, 0, len(descriptors))
	for _, d := range descriptors {
		key := registryKey(d.Category, d.ID)
		if seen[key] {
			return nil, &apierrors.ResourceInitError{Resource: d.ID, Reason: fmt.Sprintf("duplicate %s resource id", d.Category)}
		}
		seen[key] = true

		a, err := r.Get(d)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Close releases every adapter that was built successfully.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.adapter != nil {
			e.adapter.Close()
		}
	}
}

func registryKey(cat constants.Category, id string) string {
	return string(cat) + "_" + id
}
