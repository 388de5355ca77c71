// Package catalog derives the storefront product listing from an
// already-fetched product list. The pipeline is pure: the input slice is never
// mutated, and the projection is recomputed from scratch on every call.
package catalog

import (
	"sort"
	"strings"

	"github.com/mawlid1431/Arts/models"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

type Query struct {
	Search   string
	Category string
	Sort     SortKey
}

// Project filters by case-insensitive substring over name+description, then by
// exact category, then sorts stably by the requested key. An empty result is
// returned as a non-nil empty slice so callers can tell it apart from a list
// that has not loaded yet.
func Project(products []models.Product, q Query) []models.Product {
	out := make([]models.Product, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range products {
		if search != "" {
			name := strings.ToLower(p.Name)
			desc := strings.ToLower(p.Description)
			if !strings.Contains(name, search) && !strings.Contains(desc, search) {
				continue
			}
		}
		if q.Category != "" && q.Category != CategoryAll && string(p.Category) != q.Category {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	return out
}

func sortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortOldest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		})
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	default: // SortNewest
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}
