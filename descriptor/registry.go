package descriptor

import (
	"cmp"
	"slices"
	"sync"
)

// DefaultDecimalTypes are decimal number types recognized without configuration.
var DefaultDecimalTypes = []TypeID{
	{PkgPath: "github.com/shopspring/decimal", Name: "Decimal"},
	{PkgPath: "github.com/cockroachdb/apd/v3", Name: "Decimal"},
	{PkgPath: "github.com/cockroachdb/apd/v2", Name: "Decimal"},
	{PkgPath: "github.com/ericlagergren/decimal", Name: "Big"},
}

// Registry is a concurrency-safe table of struct descriptors.
type Registry struct {
	mu       sync.RWMutex
	types    map[TypeID]*TypeDescriptor
	decimals map[TypeID]struct{}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDecimalTypes adds types classified as decimals, on top of DefaultDecimalTypes.
func WithDecimalTypes(ids ...TypeID) RegistryOption {
	return func(r *Registry) {
		for _, id := range ids {
			r.decimals[id] = struct{}{}
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		types:    make(map[TypeID]*TypeDescriptor),
		decimals: make(map[TypeID]struct{}),
	}

	for _, id := range DefaultDecimalTypes {
		r.decimals[id] = struct{}{}
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add stores descriptors, replacing any previous descriptor with the same id.
func (r *Registry) Add(descs ...*TypeDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range descs {
		r.types[d.ID] = d
	}
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id TypeID) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[id]

	return d, ok
}

// IsDecimal reports whether id is classified as a decimal number type.
func (r *Registry) IsDecimal(id TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.decimals[id]

	return ok
}

// IDs returns every registered struct id in a stable order.
func (r *Registry) IDs() []TypeID {
	r.mu.RLock()
	ids := make([]TypeID, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.SortFunc(ids, func(a, b TypeID) int {
		return cmp.Or(cmp.Compare(a.PkgPath, b.PkgPath), cmp.Compare(a.Name, b.Name))
	})

	return ids
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.types)
}
