package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/catalog"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

// CatalogRefresher keeps the dataset cache warm: one forced discovery at
// startup, then periodic refreshes, plus a manual trigger channel fed by
// the /api/reload endpoint and the refresh_datasets tool.
type CatalogRefresher struct {
	catalog       *catalog.Catalog
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogRefresher creates a refresher over the given catalog.
func NewCatalogRefresher(
	cat *catalog.Catalog,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogRefresher {
	return &CatalogRefresher{
		catalog:       cat,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the initial discovery and begins the periodic refresh loop.
// A failing initial pass is not fatal: the server comes up with an empty
// cache and the next read retries.
func (cr *CatalogRefresher) Start(ctx context.Context) error {
	if cr.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", cr.interval)
	}

	if err := cr.refresh(ctx); err != nil {
		cr.logger.Warn("initial discovery failed, starting with empty cache",
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.refresh(ctx); err != nil {
					cr.logger.Error("periodic catalog refresh failed",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog refresh triggered")
				if err := cr.refresh(ctx); err != nil {
					cr.logger.Error("manual catalog refresh failed",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresh loop.
func (cr *CatalogRefresher) Stop() {
	close(cr.stopCh)
}

func (cr *CatalogRefresher) refresh(ctx context.Context) error {
	snap, report, err := cr.catalog.Discover(ctx, true)
	if err != nil {
		return err
	}
	if report != nil {
		cr.logger.Info("catalog refreshed",
			logger.Int("datasets", len(snap.Datasets)),
			logger.Int("probed", len(report.Outcomes)),
			logger.Int("skipped", report.Skipped()))
	}
	return nil
}
