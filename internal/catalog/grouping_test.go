package catalog_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/confetex/api/internal/catalog"
)

func variant(gt uuid.UUID, size, color string, stock int32) catalog.Variant {
	return catalog.Variant{
		ID:            uuid.New(),
		GarmentTypeID: gt,
		Name:          "Camisa",
		Size:          size,
		Color:         color,
		Stock:         stock,
		Active:        true,
	}
}

func TestSortSizesNumericAware(t *testing.T) {
	sizes := []string{"M", "10", "8", "XS", "12"}
	catalog.SortSizes(sizes)
	want := []string{"8", "10", "12", "M", "XS"}
	if !reflect.DeepEqual(sizes, want) {
		t.Errorf("SortSizes = %v, want %v", sizes, want)
	}
}

func TestGroupByGarmentType(t *testing.T) {
	shirts := catalog.GarmentType{ID: uuid.New(), Name: "Camisa"}
	pants := catalog.GarmentType{ID: uuid.New(), Name: "Pantalón"}

	variants := []catalog.Variant{
		variant(shirts.ID, "10", "blanco", 5),
		variant(shirts.ID, "8", "azul", 3),
		variant(shirts.ID, "M", "blanco", 2),
		variant(pants.ID, "12", "gris", 1),
	}

	groups := catalog.GroupByGarmentType(variants, []catalog.GarmentType{pants, shirts}, catalog.StockAll)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	// Ordered by garment type name.
	if groups[0].GarmentType.Name != "Camisa" || groups[1].GarmentType.Name != "Pantalón" {
		t.Errorf("group order = %s, %s", groups[0].GarmentType.Name, groups[1].GarmentType.Name)
	}
	wantSizes := []string{"8", "10", "M"}
	if !reflect.DeepEqual(groups[0].Sizes, wantSizes) {
		t.Errorf("sizes = %v, want %v", groups[0].Sizes, wantSizes)
	}
}

func TestGroupingIsIdempotent(t *testing.T) {
	gt := catalog.GarmentType{ID: uuid.New(), Name: "Sudadera"}
	variants := []catalog.Variant{
		variant(gt.ID, "10", "negro", 4),
		variant(gt.ID, "8", "negro", 2),
		variant(gt.ID, "8", "azul", 1),
	}
	types := []catalog.GarmentType{gt}

	first := catalog.GroupByGarmentType(variants, types, catalog.StockWith)
	second := catalog.GroupByGarmentType(variants, types, catalog.StockWith)
	if !reflect.DeepEqual(first, second) {
		t.Error("grouping the same input twice diverged")
	}
}

func TestGroupOmittedWhenAllVariantsFiltered(t *testing.T) {
	stocked := catalog.GarmentType{ID: uuid.New(), Name: "Camisa"}
	empty := catalog.GarmentType{ID: uuid.New(), Name: "Yomber"}

	variants := []catalog.Variant{
		variant(stocked.ID, "8", "blanco", 5),
		variant(empty.ID, "8", "azul", 0),
		variant(empty.ID, "10", "azul", 0),
	}

	groups := catalog.GroupByGarmentType(variants, []catalog.GarmentType{stocked, empty}, catalog.StockWith)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].GarmentType.ID != stocked.ID {
		t.Error("surviving group should be the stocked garment type")
	}
}

func TestInactiveVariantsNeverSurvive(t *testing.T) {
	gt := catalog.GarmentType{ID: uuid.New(), Name: "Falda"}
	v := variant(gt.ID, "8", "gris", 10)
	v.Active = false

	groups := catalog.GroupByGarmentType([]catalog.Variant{v}, []catalog.GarmentType{gt}, catalog.StockAll)
	if len(groups) != 0 {
		t.Errorf("groups = %d, want 0", len(groups))
	}
}

func TestColorsForSizeRequireStock(t *testing.T) {
	gt := uuid.New()
	variants := []catalog.Variant{
		variant(gt, "8", "blanco", 2),
		variant(gt, "8", "azul", 0),
		variant(gt, "10", "gris", 5),
	}
	colors := catalog.ColorsForSize(variants, "8")
	if !reflect.DeepEqual(colors, []string{"blanco"}) {
		t.Errorf("colors = %v, want [blanco]", colors)
	}
}
