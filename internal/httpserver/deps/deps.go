package deps

import (
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/catalog"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	Catalog       *catalog.Catalog // dataset cache + discovery
	Client        *arcgis.Client   // direct data queries
	ReloadTrigger chan struct{}    // channel to trigger a manual catalog refresh
}
