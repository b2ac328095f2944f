// Package catalog groups flat product/variant rows into the garment-type ->
// size -> color hierarchy the storefront and the sales app render. Grouping is
// pure and display-only, never persisted.
package catalog

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// StockFilter restricts which variants survive grouping.
type StockFilter string

const (
	StockAll  StockFilter = "all"
	StockWith StockFilter = "with_stock"
)

// Variant is a flat product row as fetched from the catalog.
type Variant struct {
	ID            uuid.UUID
	GarmentTypeID uuid.UUID
	Name          string
	Size          string
	Color         string
	Price         string
	Stock         int32
	ImageURL      string
	Active        bool
}

// GarmentType is the grouping key metadata.
type GarmentType struct {
	ID                   uuid.UUID
	Name                 string
	RequiresMeasurements bool
}

// Group is one garment type with its surviving variants and the derived size
// set. Sizes are sorted numeric-first (numeric sizes compare numerically,
// non-numeric fall back to lexicographic after them).
type Group struct {
	GarmentType GarmentType
	Sizes       []string
	Variants    []Variant
}

// GroupByGarmentType groups variants under their garment type, applying the
// stock filter. Inactive variants never survive. A garment type whose variants
// are all filtered out is omitted from the result. Output ordering is
// deterministic: groups follow garment-type name, variants follow size then
// color, so grouping the same input twice yields the same result.
func GroupByGarmentType(variants []Variant, types []GarmentType, filter StockFilter) []Group {
	byType := make(map[uuid.UUID][]Variant)
	for _, v := range variants {
		if !v.Active {
			continue
		}
		if filter == StockWith && v.Stock <= 0 {
			continue
		}
		byType[v.GarmentTypeID] = append(byType[v.GarmentTypeID], v)
	}

	ordered := make([]GarmentType, len(types))
	copy(ordered, types)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	groups := make([]Group, 0, len(ordered))
	for _, gt := range ordered {
		vs := byType[gt.ID]
		if len(vs) == 0 {
			continue
		}
		sort.SliceStable(vs, func(i, j int) bool {
			if vs[i].Size != vs[j].Size {
				return sizeLess(vs[i].Size, vs[j].Size)
			}
			return vs[i].Color < vs[j].Color
		})
		groups = append(groups, Group{
			GarmentType: gt,
			Sizes:       Sizes(vs),
			Variants:    vs,
		})
	}
	return groups
}

// Sizes returns the distinct sizes present in variants, numeric-aware sorted.
func Sizes(variants []Variant) []string {
	seen := make(map[string]bool)
	var sizes []string
	for _, v := range variants {
		if !seen[v.Size] {
			seen[v.Size] = true
			sizes = append(sizes, v.Size)
		}
	}
	SortSizes(sizes)
	return sizes
}

// ColorsForSize returns the distinct colors available for the given size among
// variants that have stock, in lexicographic order.
func ColorsForSize(variants []Variant, size string) []string {
	seen := make(map[string]bool)
	var colors []string
	for _, v := range variants {
		if v.Size != size || v.Stock <= 0 {
			continue
		}
		if !seen[v.Color] {
			seen[v.Color] = true
			colors = append(colors, v.Color)
		}
	}
	sort.Strings(colors)
	return colors
}

// SortSizes sorts sizes in place: numeric sizes first in numeric order, then
// non-numeric sizes lexicographically. ['8','10','M'] sorts as 8, 10, M.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool { return sizeLess(sizes[i], sizes[j]) })
}

func sizeLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
