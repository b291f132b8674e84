package domain

import "encoding/json"

// DatasetRecord is the canonical representation of one discoverable dataset.
//
// It is NOT tied to any particular remote descriptor shape. Known services,
// root catalog services and folder services are all flattened into this
// structure during discovery.
//
// A DatasetRecord is uniquely identified by its ID within one cache
// generation. On collision the later discovery wins.
type DatasetRecord struct {
	// ID is the normalized identifier: the lowercased service name,
	// with "/" flattened to "_" for folder-qualified services.
	// Example: "Leases/Active" -> "leases_active"
	ID string `json:"id"`

	// Name is the original, possibly folder-qualified, service name.
	Name string `json:"name"`

	// Title is the human label. Falls back to the service name when the
	// remote provides no serviceDescription.
	Title string `json:"title"`

	// Description is free text. Falls back to a generated default when
	// the remote provides none.
	Description string `json:"description"`

	// ServiceType is the remote-declared type. Open set; typically
	// "FeatureServer" or "MapServer".
	ServiceType string `json:"type"`

	// URL is the fully qualified query base URL for this service.
	URL string `json:"url"`

	// Tags always carry the municipality/GIS markers, plus the folder
	// name when the service lives in a folder.
	Tags []string `json:"tags"`

	// Categories is an ordered sequence of category labels.
	Categories []string `json:"categories"`

	// Layers holds the raw layer descriptors exactly as returned by the
	// remote service. Opaque to this system.
	Layers []json.RawMessage `json:"layers"`
}

// ServiceEntry is a secondary index entry keyed by the original
// (non-normalized) service name. It exists purely as an alternate lookup
// path and is never independently mutated.
type ServiceEntry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ServiceType string `json:"type"`
	DatasetID   string `json:"dataset_id"`
}
