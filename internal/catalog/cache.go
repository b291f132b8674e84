package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

// DefaultTTL is the freshness window for the dataset cache.
const DefaultTTL = 900 * time.Second

// Snapshot is one fully-completed discovery result. It is immutable after
// the swap: readers always observe either this pass or the prior one,
// never a half-built set.
type Snapshot struct {
	Datasets map[string]domain.DatasetRecord
	Services map[string]domain.ServiceEntry
	Order    []string // dataset ids in discovery order
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Datasets: make(map[string]domain.DatasetRecord),
		Services: make(map[string]domain.ServiceEntry),
	}
}

// Records returns all datasets in discovery order.
func (s *Snapshot) Records() []domain.DatasetRecord {
	out := make([]domain.DatasetRecord, 0, len(s.Order))
	for _, id := range s.Order {
		out = append(out, s.Datasets[id])
	}
	return out
}

// Catalog owns the dataset cache and the discovery walk that populates it.
// It is created empty at process start and fully replaced on every
// successful pass; nothing is ever persisted.
type Catalog struct {
	walker   *walker
	registry *Registry
	logger   logger.Logger
	ttl      time.Duration
	now      func() time.Time // injectable clock for tests

	mu          sync.RWMutex // guards snapshot and lastRefresh
	snapshot    *Snapshot
	lastRefresh time.Time

	refreshMu sync.Mutex // serializes discovery passes
}

// New builds a Catalog over the given client and registry. apiBase is the
// ArcGIS REST services root to enumerate.
func New(client *arcgis.Client, registry *Registry, apiBase string, ttl time.Duration, log logger.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		walker: &walker{
			client:   client,
			registry: registry,
			apiBase:  apiBase,
			logger:   log,
		},
		registry: registry,
		logger:   log,
		ttl:      ttl,
		now:      time.Now,
		snapshot: emptySnapshot(),
	}
}

// Registry exposes the known-services registry this catalog discovers from.
func (c *Catalog) Registry() *Registry {
	return c.registry
}

// Snapshot returns the current cache state without triggering discovery.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot
}

// LastRefresh returns when the cache last completed a discovery pass.
// The zero time means never (or invalidated).
func (c *Catalog) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastRefresh
}

// fresh reports whether the cache can be served without any network calls.
func (c *Catalog) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return !c.lastRefresh.IsZero() && c.now().Sub(c.lastRefresh) < c.ttl
}

// Discover refreshes the cache per the staleness gate and returns the
// resulting state.
//
// The returned report is nil when the gate short-circuited (no network
// activity happened). The returned error is non-nil only for a structural
// root catalog failure; the previous snapshot is retained and returned
// as-is in that case. Per-service probe failures never surface here, they
// only shrink the result and show up in the report.
func (c *Catalog) Discover(ctx context.Context, force bool) (*Snapshot, *domain.DiscoveryReport, error) {
	if !force {
		if c.fresh() {
			return c.Snapshot(), nil, nil
		}
		// Stale. If another pass is already running, serve the current
		// snapshot rather than blocking a read-only caller behind it.
		if !c.refreshMu.TryLock() {
			return c.Snapshot(), nil, nil
		}
	} else {
		c.refreshMu.Lock()
	}
	defer c.refreshMu.Unlock()

	// Re-check under the refresh lock: a concurrent pass may have
	// refreshed while we waited.
	if !force && c.fresh() {
		return c.Snapshot(), nil, nil
	}

	c.logger.Info("discovering eThekwini GIS services")
	started := c.now()

	ws, report, err := c.walker.walk(ctx)
	if err != nil {
		c.logger.Error("discovery pass aborted, keeping previous cache",
			logger.Error(err))
		return c.Snapshot(), report, err
	}

	next := &Snapshot{
		Datasets: ws.datasets,
		Services: ws.services,
		Order:    ws.order,
	}

	c.mu.Lock()
	c.snapshot = next
	c.lastRefresh = c.now()
	c.mu.Unlock()

	c.logger.Info("discovery pass complete",
		logger.Int("datasets", len(next.Datasets)),
		logger.Int("skipped", report.Skipped()),
		logger.Duration("took", c.now().Sub(started)))

	return next, report, nil
}

// Datasets returns the cache state, refreshing it first if stale. Discovery
// failures degrade to whatever state is already cached.
func (c *Catalog) Datasets(ctx context.Context, force bool) *Snapshot {
	snap, _, err := c.Discover(ctx, force)
	if err != nil {
		c.logger.Warn("serving previous cache after failed discovery",
			logger.Error(err))
	}
	return snap
}

// Invalidate unsets the refresh timestamp without clearing data, forcing
// the next read to re-discover.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastRefresh = time.Time{}
}

// RegisterService adds an operator-curated endpoint to the registry and
// synchronously re-discovers so the new service is queryable on return.
// Returns the updated dataset count.
func (c *Catalog) RegisterService(ctx context.Context, name, url string) (int, error) {
	if name == "" {
		return 0, missingField("service_name")
	}
	if url == "" {
		return 0, missingField("service_url")
	}

	c.registry.Register(name, url)

	snap, _, err := c.Discover(ctx, true)
	if err != nil {
		return len(snap.Datasets), err
	}
	return len(snap.Datasets), nil
}
