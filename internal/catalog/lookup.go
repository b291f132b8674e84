package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
)

// DefaultSearchLimit caps search results when the caller gives no limit.
const DefaultSearchLimit = 20

// DatasetByID looks a dataset up by normalized id, falling back to a
// case-insensitive match on name then title. Misses return
// domain.ErrDatasetNotFound; the remote is never consulted for the lookup
// itself.
func (c *Catalog) DatasetByID(ctx context.Context, id string) (domain.DatasetRecord, error) {
	snap := c.Datasets(ctx, false)

	if rec, ok := snap.Datasets[id]; ok {
		return rec, nil
	}

	for _, candidate := range snap.Order {
		rec := snap.Datasets[candidate]
		if strings.EqualFold(rec.Name, id) || strings.EqualFold(rec.Title, id) {
			return rec, nil
		}
	}

	return domain.DatasetRecord{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, id)
}

// Search returns datasets whose name+title+description+tags contain query
// (case-insensitive) and whose categories contain category when given.
// Iteration order is the cache's discovery order; collection stops at limit.
// An empty query with no category matches everything.
func (c *Catalog) Search(ctx context.Context, query, category string, limit int) []domain.DatasetRecord {
	snap := c.Datasets(ctx, false)

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	queryLower := strings.ToLower(query)

	results := make([]domain.DatasetRecord, 0, limit)
	for _, id := range snap.Order {
		rec := snap.Datasets[id]
		if query != "" && !matchesText(rec, queryLower) {
			continue
		}
		if category != "" && !matchesCategory(rec, category) {
			continue
		}
		results = append(results, rec)
		if len(results) >= limit {
			break
		}
	}
	return results
}

func matchesText(rec domain.DatasetRecord, queryLower string) bool {
	searchable := strings.ToLower(strings.Join([]string{
		rec.Name,
		rec.Title,
		rec.Description,
		strings.Join(rec.Tags, " "),
	}, " "))
	return strings.Contains(searchable, queryLower)
}

func matchesCategory(rec domain.DatasetRecord, category string) bool {
	for _, c := range rec.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Overview summarizes the cache: category membership, service type counts
// and totals. This is the list_municipal_services answer.
type Overview struct {
	Categories    map[string][]string `json:"categories"`
	ServiceTypes  map[string]int      `json:"service_types"`
	TotalDatasets int                 `json:"total_datasets"`
	TotalServices int                 `json:"total_services"`
}

// Overview builds the category and service-type summary over the current
// cache state, refreshing first if stale.
func (c *Catalog) Overview(ctx context.Context) Overview {
	snap := c.Datasets(ctx, false)

	ov := Overview{
		Categories:    make(map[string][]string),
		ServiceTypes:  make(map[string]int),
		TotalDatasets: len(snap.Datasets),
		TotalServices: len(snap.Services),
	}

	for _, id := range snap.Order {
		rec := snap.Datasets[id]
		for _, category := range rec.Categories {
			ov.Categories[category] = append(ov.Categories[category], rec.Name)
		}
		serviceType := rec.ServiceType
		if serviceType == "" {
			serviceType = "Unknown"
		}
		ov.ServiceTypes[serviceType]++
	}

	return ov
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
}
