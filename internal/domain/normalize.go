package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tags every dataset carries, regardless of where it was discovered.
var baseTags = []string{"eThekwini", "municipality", "GIS"}

// DefaultCategory is the category every dataset belongs to.
const DefaultCategory = "Municipal Services"

// ServiceDescriptor is the slice of a raw remote descriptor the normalizer
// consumes. Callers map their wire type into this; everything else in the
// remote answer is ignored here.
type ServiceDescriptor struct {
	Title       string            // remote serviceDescription
	Description string            // remote description
	Layers      []json.RawMessage // raw layer descriptors, passed through
}

// Normalize converts one raw service descriptor into a DatasetRecord.
//
// Pure function: no I/O, no shared state. Normalizing the same input twice
// yields identical records.
//
// folder is empty for known and root-level services. Folder-qualified
// services get "folder/name" as their name, "_" instead of "/" in their id,
// and the folder appended to tags and categories.
func Normalize(desc ServiceDescriptor, serviceName, serviceType, serviceURL, folder string) DatasetRecord {
	name := serviceName
	if folder != "" {
		name = folder + "/" + serviceName
	}

	title := desc.Title
	if title == "" {
		title = serviceName
	}

	description := desc.Description
	if description == "" {
		description = fmt.Sprintf("%s service from eThekwini municipality", serviceName)
	}

	tags := make([]string, 0, len(baseTags)+1)
	tags = append(tags, baseTags...)
	categories := []string{DefaultCategory}
	if folder != "" {
		tags = append(tags, folder)
		categories = append(categories, folder)
	}

	return DatasetRecord{
		ID:          NormalizeID(name),
		Name:        name,
		Title:       title,
		Description: description,
		ServiceType: serviceType,
		URL:         serviceURL,
		Tags:        tags,
		Categories:  categories,
		Layers:      desc.Layers,
	}
}

// NormalizeID lowercases a service name and flattens folder qualifiers.
// Example: "Leases/Active" -> "leases_active"
func NormalizeID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "/", "_")
}
