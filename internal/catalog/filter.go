package catalog

import "strings"

// CategoryAll matches every category in Filter.
const CategoryAll = "all"

// Filter narrows a service list by search term and category. The term matches
// case-insensitively against name and description; an empty term or the "all"
// category passes everything. Pure, so filtering never touches the store or
// the cache.
func Filter(services []Service, term, category string) []Service {
	term = strings.ToLower(strings.TrimSpace(term))
	matchAll := category == "" || category == CategoryAll

	out := make([]Service, 0, len(services))
	for _, svc := range services {
		if !matchAll && string(svc.Category) != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(svc.Name), term) &&
			!strings.Contains(strings.ToLower(svc.Description), term) {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// Stats summarizes a service list for the catalog dashboard.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	Free       int            `json:"free"`
	Paid       int            `json:"paid"`
}

// ComputeStats tallies totals over the given services.
func ComputeStats(services []Service) Stats {
	stats := Stats{ByCategory: make(map[string]int)}
	for _, svc := range services {
		stats.Total++
		stats.ByCategory[string(svc.Category)]++
		if svc.Fees == 0 {
			stats.Free++
		} else {
			stats.Paid++
		}
	}
	return stats
}
