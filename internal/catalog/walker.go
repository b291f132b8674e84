package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

// knownServiceType is the label applied to operator-curated endpoints,
// whose type is not declared by any catalog listing.
const knownServiceType = "Feature Service"

// walker enumerates the remote catalog: known fixed endpoints first, then
// root-level services, then per-folder services. Individual probe failures
// are recorded and skipped; only an in-band server error on the root
// catalog aborts the pass.
type walker struct {
	client   *arcgis.Client
	registry *Registry
	apiBase  string
	logger   logger.Logger
}

// workingSet is the result of one discovery pass, built fresh every time
// and swapped into the cache atomically.
type workingSet struct {
	datasets map[string]domain.DatasetRecord
	order    []string // insertion order of dataset ids
	services map[string]domain.ServiceEntry
}

func newWorkingSet() *workingSet {
	return &workingSet{
		datasets: make(map[string]domain.DatasetRecord),
		services: make(map[string]domain.ServiceEntry),
	}
}

// add inserts a dataset and its service entry. On id collision the later
// record wins but keeps the earlier position in iteration order.
func (ws *workingSet) add(rec domain.DatasetRecord, serviceName string) {
	if _, exists := ws.datasets[rec.ID]; !exists {
		ws.order = append(ws.order, rec.ID)
	}
	ws.datasets[rec.ID] = rec
	ws.services[serviceName] = domain.ServiceEntry{
		Name:        serviceName,
		URL:         rec.URL,
		ServiceType: rec.ServiceType,
		DatasetID:   rec.ID,
	}
}

// qualifies reports whether a catalog-declared service type is one we index.
func qualifies(serviceType string) bool {
	return serviceType == "FeatureServer" || serviceType == "MapServer"
}

// walk runs one full discovery pass. The returned error is non-nil only for
// a structural root catalog failure, in which case the working set must be
// discarded and the previous cache retained.
func (w *walker) walk(ctx context.Context) (*workingSet, *domain.DiscoveryReport, error) {
	ws := newWorkingSet()
	report := &domain.DiscoveryReport{}

	// Step 1: operator-curated endpoints.
	for _, known := range w.registry.Snapshot() {
		info, err := w.client.ServiceInfo(ctx, known.URL)
		if err != nil {
			w.logger.Warn("known service unreachable, skipping",
				logger.String("service", known.Name),
				logger.Error(err))
			report.Skip(known.Name, domain.SourceKnown, "", err.Error())
			continue
		}

		ws.add(normalizeInfo(info, known.Name, knownServiceType, known.URL, ""), known.Name)
		report.Success(known.Name, domain.SourceKnown, "")
		w.logger.Info("added known service",
			logger.String("service", known.Name),
			logger.Int("layers", len(info.Layers)))
	}

	// Step 2: root catalog.
	root, err := w.client.Catalog(ctx, w.apiBase)
	if err != nil {
		var srvErr *arcgis.ServerError
		if errors.As(err, &srvErr) {
			// The catalog answered but is broken. Keep the previous cache.
			return nil, report, fmt.Errorf("root catalog structural failure: %w", err)
		}
		w.logger.Warn("could not discover additional services",
			logger.Error(err))
		report.Skip("services root", domain.SourceRoot, "", err.Error())
		return ws, report, nil
	}

	for _, svc := range root.Services {
		if !qualifies(svc.Type) || w.registry.Has(svc.Name) {
			continue
		}
		w.probeCatalogService(ctx, ws, report, svc, "")
	}

	// Step 3: folder catalogs. A failing folder never aborts the rest.
	for _, folder := range root.Folders {
		folderCat, err := w.client.Catalog(ctx, w.apiBase+"/"+folder)
		if err != nil {
			w.logger.Debug("could not process folder",
				logger.String("folder", folder),
				logger.Error(err))
			report.Skip(folder, domain.SourceFolder, folder, err.Error())
			continue
		}

		for _, svc := range folderCat.Services {
			if !qualifies(svc.Type) {
				continue
			}
			w.probeCatalogService(ctx, ws, report, svc, folder)
		}
	}

	return ws, report, nil
}

// probeCatalogService probes one catalog-listed service and inserts it into
// the working set. folder is empty for root-level services.
func (w *walker) probeCatalogService(ctx context.Context, ws *workingSet, report *domain.DiscoveryReport, svc arcgis.CatalogService, folder string) {
	fullName := svc.Name
	source := domain.SourceRoot
	if folder != "" {
		fullName = folder + "/" + svc.Name
		source = domain.SourceFolder
	}
	serviceURL := w.apiBase + "/" + fullName + "/" + svc.Type

	info, err := w.client.ServiceInfo(ctx, serviceURL)
	if err != nil {
		w.logger.Debug("could not get info for discovered service",
			logger.String("service", fullName),
			logger.Error(err))
		report.Skip(fullName, source, folder, err.Error())
		return
	}

	ws.add(normalizeInfo(info, svc.Name, svc.Type, serviceURL, folder), fullName)
	report.Success(fullName, source, folder)
	w.logger.Info("discovered service",
		logger.String("service", fullName),
		logger.String("type", svc.Type))
}

// normalizeInfo maps a wire descriptor into the normalizer's input shape.
func normalizeInfo(info *arcgis.ServiceInfo, serviceName, serviceType, serviceURL, folder string) domain.DatasetRecord {
	return domain.Normalize(domain.ServiceDescriptor{
		Title:       info.ServiceDescription,
		Description: info.Description,
		Layers:      info.Layers,
	}, serviceName, serviceType, serviceURL, folder)
}
