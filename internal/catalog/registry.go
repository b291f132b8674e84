package catalog

import (
	"sync"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/config"
)

// KnownService is one operator-curated endpoint.
type KnownService struct {
	Name string
	URL  string
}

// Registry holds the operator-curated service name -> URL mapping.
// It is owned by the server instance for its whole process lifetime and
// seeded with at least the Leases endpoint. RegisterService on the Catalog
// is the only runtime mutation path.
type Registry struct {
	mu       sync.RWMutex
	services map[string]string
	order    []string // insertion order, keeps discovery deterministic
}

// NewRegistry builds a registry seeded with the built-in Leases endpoint.
func NewRegistry() *Registry {
	r := &Registry{services: make(map[string]string)}
	r.Register("Leases", config.DefaultLeasesURL)
	return r
}

// Register inserts or replaces one known service.
func (r *Registry) Register(name, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[name]; !ok {
		r.order = append(r.order, name)
	}
	r.services[name] = url
}

// Has reports whether name is an operator-curated service. Discovery uses
// this to avoid probing the same service twice.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.services[name]
	return ok
}

// Lookup returns the URL registered for name.
func (r *Registry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.services[name]
	return url, ok
}

// Snapshot returns all known services in registration order.
func (r *Registry) Snapshot() []KnownService {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]KnownService, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, KnownService{Name: name, URL: r.services[name]})
	}
	return out
}

// Len returns the number of known services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.services)
}
