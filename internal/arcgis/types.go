package arcgis

import "encoding/json"

// Wire types for the ArcGIS REST "f=json" catalog/service/layer endpoints.
// Field names mirror the remote contract verbatim and must stay that way.
// Anything not listed here passes through as opaque JSON.

// CatalogResponse is the answer of a services root or folder endpoint.
type CatalogResponse struct {
	CurrentVersion float64          `json:"currentVersion"`
	Folders        []string         `json:"folders"`
	Services       []CatalogService `json:"services"`
	Error          *ServerError     `json:"error,omitempty"`
}

// CatalogService is one service listed in a catalog response.
type CatalogService struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ServiceInfo is the descriptor of a single FeatureServer/MapServer.
// Layers stay raw: their shape is owned by the remote service.
type ServiceInfo struct {
	ServiceDescription string            `json:"serviceDescription"`
	Description        string            `json:"description"`
	Layers             []json.RawMessage `json:"layers"`
	Error              *ServerError      `json:"error,omitempty"`
}

// layerMetadata is the wire shape of a layer endpoint. Only the fields we
// contractually rely on are decoded; the rest is dropped.
type layerMetadata struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	GeometryType string            `json:"geometryType"`
	Fields       []fieldDescriptor `json:"fields"`
	Error        *ServerError      `json:"error,omitempty"`
}

// fieldDescriptor is one entry of a layer's field list. Nullable and
// Editable are pointers so that absent values can take the remote's
// documented defaults (nullable=true, editable=false).
type fieldDescriptor struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Alias    string `json:"alias"`
	Length   *int   `json:"length"`
	Nullable *bool  `json:"nullable"`
	Editable *bool  `json:"editable"`
}

// LayerSchema is the introspection result returned to callers.
type LayerSchema struct {
	LayerName        string       `json:"layer_name"`
	LayerDescription string       `json:"layer_description"`
	GeometryType     string       `json:"geometry_type"`
	Fields           []LayerField `json:"fields"`
}

// LayerField is the normalized view of one field descriptor.
type LayerField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Alias    string `json:"alias"`
	Length   *int   `json:"length"`
	Nullable bool   `json:"nullable"`
	Editable bool   `json:"editable"`
}

func (m *layerMetadata) schema() *LayerSchema {
	schema := &LayerSchema{
		LayerName:        m.Name,
		LayerDescription: m.Description,
		GeometryType:     m.GeometryType,
		Fields:           make([]LayerField, 0, len(m.Fields)),
	}
	for _, f := range m.Fields {
		field := LayerField{
			Name:     f.Name,
			Type:     f.Type,
			Alias:    f.Alias,
			Length:   f.Length,
			Nullable: true,
		}
		if f.Nullable != nil {
			field.Nullable = *f.Nullable
		}
		if f.Editable != nil {
			field.Editable = *f.Editable
		}
		schema.Fields = append(schema.Fields, field)
	}
	return schema
}
