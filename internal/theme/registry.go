package theme

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/leappage/pkg/core"
)

// Registry holds block descriptors by slug. Scanned descriptors are
// replaced as a set on reload; registered ones survive reloads and win
// over scanned blocks with the same slug.
type Registry struct {
	mu sync.RWMutex

	scanned    map[string]*core.BlockDescriptor
	registered map[string]*core.BlockDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scanned:    make(map[string]*core.BlockDescriptor),
		registered: make(map[string]*core.BlockDescriptor),
	}
}

// Register adds a Go-implemented block. The last registration wins.
func (r *Registry) Register(desc *core.BlockDescriptor) error {
	if err := ValidateSlug(desc.Slug); err != nil {
		return &LoadError{Slug: desc.Slug, Message: err.Error()}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered[desc.Slug] = desc
	return nil
}

// Replace swaps the scanned descriptors in one step.
func (r *Registry) Replace(descs []*core.BlockDescriptor) {
	scanned := make(map[string]*core.BlockDescriptor, len(descs))
	for _, d := range descs {
		scanned[d.Slug] = d
	}
	r.mu.Lock()
	r.scanned = scanned
	r.mu.Unlock()
}

// Get returns the descriptor for slug.
func (r *Registry) Get(slug string) (*core.BlockDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.registered[slug]; ok {
		return d, true
	}
	d, ok := r.scanned[slug]
	return d, ok
}

// List returns all descriptors sorted by slug.
func (r *Registry) List() []*core.BlockDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	merged := make(map[string]*core.BlockDescriptor, len(r.scanned)+len(r.registered))
	for slug, d := range r.scanned {
		merged[slug] = d
	}
	for slug, d := range r.registered {
		merged[slug] = d
	}

	out := make([]*core.BlockDescriptor, 0, len(merged))
	for _, d := range merged {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Len returns the number of distinct slugs.
func (r *Registry) Len() int {
	return len(r.List())
}
