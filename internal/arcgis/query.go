package arcgis

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
)

const (
	defaultWhere      = "1=1"
	defaultOutFields  = "*"
	defaultSpatialRel = "esriSpatialRelIntersects"
	defaultMaxRecords = 100

	// WGS84, the spatial reference all bounding-box queries are expressed in.
	wkidWGS84 = 4326
)

// ValidStatistics are the aggregate computations the remote accepts.
var ValidStatistics = map[string]bool{
	"count":  true,
	"sum":    true,
	"min":    true,
	"max":    true,
	"avg":    true,
	"stddev": true,
}

// FeatureQuery describes an attribute query with an optional spatial filter.
type FeatureQuery struct {
	ServiceURL     string
	LayerID        int
	Where          string // default "1=1" (match all)
	OutFields      string // default "*"
	ReturnGeometry bool
	Geometry       string // optional filter geometry (esri JSON or WKT)
	GeometryType   string // default esriGeometryPolygon when Geometry is set
	SpatialRel     string // default esriSpatialRelIntersects
	MaxRecords     int    // default 100
	Format         string // default "json"; "geojson" passes through
}

func (q FeatureQuery) params() (url.Values, error) {
	if q.ServiceURL == "" {
		return nil, missingArgument("service_url")
	}

	where := q.Where
	if where == "" {
		where = defaultWhere
	}
	outFields := q.OutFields
	if outFields == "" {
		outFields = defaultOutFields
	}
	spatialRel := q.SpatialRel
	if spatialRel == "" {
		spatialRel = defaultSpatialRel
	}
	maxRecords := q.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", outFields)
	params.Set("returnGeometry", strconv.FormatBool(q.ReturnGeometry))
	params.Set("resultRecordCount", strconv.Itoa(maxRecords))
	params.Set("spatialRel", spatialRel)

	if q.Geometry != "" {
		geometryType := q.GeometryType
		if geometryType == "" {
			geometryType = "esriGeometryPolygon"
		}
		params.Set("geometry", q.Geometry)
		params.Set("geometryType", geometryType)
	}

	if q.Format != "" {
		params.Set("f", q.Format)
	}

	return params, nil
}

// StatisticsQuery describes a single named statistic over one field.
type StatisticsQuery struct {
	ServiceURL    string
	LayerID       int
	Field         string
	StatisticType string // count|sum|min|max|avg|stddev, default count
	Where         string // default "1=1"
}

// outStatistic is the wire shape ArcGIS expects in the outStatistics param.
type outStatistic struct {
	StatisticType         string `json:"statisticType"`
	OnStatisticField      string `json:"onStatisticField"`
	OutStatisticFieldName string `json:"outStatisticFieldName"`
}

func (q StatisticsQuery) params() (url.Values, error) {
	if q.ServiceURL == "" {
		return nil, missingArgument("service_url")
	}
	if q.Field == "" {
		return nil, missingArgument("field_name")
	}

	statType := q.StatisticType
	if statType == "" {
		statType = "count"
	}
	if !ValidStatistics[statType] {
		return nil, fmt.Errorf("%w: unknown statistic type %q", domain.ErrInvalidInput, statType)
	}

	where := q.Where
	if where == "" {
		where = defaultWhere
	}

	stats, err := json.Marshal([]outStatistic{{
		StatisticType:         statType,
		OnStatisticField:      q.Field,
		OutStatisticFieldName: fmt.Sprintf("%s_%s", statType, q.Field),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode outStatistics: %w", err)
	}

	params := url.Values{}
	params.Set("where", where)
	params.Set("outStatistics", string(stats))
	return params, nil
}

// BoundingBoxQuery describes an axis-aligned envelope query in WGS84,
// optionally widened into a distance query by a buffer in meters.
type BoundingBoxQuery struct {
	ServiceURL     string
	LayerID        int
	XMin           float64
	YMin           float64
	XMax           float64
	YMax           float64
	BufferDistance float64 // meters; 0 means no buffer
	MaxRecords     int     // default 100
}

// envelope is the geometry parameter of a bounding-box query.
type envelope struct {
	XMin             float64          `json:"xmin"`
	YMin             float64          `json:"ymin"`
	XMax             float64          `json:"xmax"`
	YMax             float64          `json:"ymax"`
	SpatialReference spatialReference `json:"spatialReference"`
}

type spatialReference struct {
	WKID int `json:"wkid"`
}

func (q BoundingBoxQuery) params() (url.Values, error) {
	if q.ServiceURL == "" {
		return nil, missingArgument("service_url")
	}

	maxRecords := q.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	geometry, err := json.Marshal(envelope{
		XMin:             q.XMin,
		YMin:             q.YMin,
		XMax:             q.XMax,
		YMax:             q.YMax,
		SpatialReference: spatialReference{WKID: wkidWGS84},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	params := url.Values{}
	params.Set("geometry", string(geometry))
	params.Set("geometryType", "esriGeometryEnvelope")
	params.Set("spatialRel", defaultSpatialRel)
	params.Set("where", defaultWhere)
	params.Set("outFields", defaultOutFields)
	params.Set("returnGeometry", "true")
	params.Set("resultRecordCount", strconv.Itoa(maxRecords))

	if q.BufferDistance > 0 {
		params.Set("distance", strconv.FormatFloat(q.BufferDistance, 'f', -1, 64))
		params.Set("units", "esriSRUnit_Meter")
	}

	return params, nil
}

func missingArgument(name string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
}
