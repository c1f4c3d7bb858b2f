package catalog

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type productOpt func(*domain.Product)

func withPrice(v int64) productOpt        { return func(p *domain.Product) { p.Price = ptr(v) } }
func withStock(v int64) productOpt        { return func(p *domain.Product) { p.StockQuantity = v } }
func withDescription(s string) productOpt { return func(p *domain.Product) { p.Description = ptr(s) } }
func withCreated(days int) productOpt {
	return func(p *domain.Product) { p.CreatedAt = baseTime.AddDate(0, 0, days) }
}

func newProduct(id, name, category string, opts ...productOpt) domain.Product {
	p := domain.Product{
		ID:        id,
		Name:      name,
		Category:  category,
		IsActive:  true,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// fixture повторяет демонстрационный каталог витрины.
func fixture() []domain.Product {
	return []domain.Product{
		newProduct("1", "Premium Glass Bottle Cap - Silver", "Bottle Caps", withPrice(250), withStock(150), withCreated(0),
			withDescription("High-quality silver-colored bottle cap made from premium materials.")),
		newProduct("2", "Gold-Plated Wine Bottle Cap", "Bottle Caps", withPrice(499), withStock(75), withCreated(1),
			withDescription("Luxurious gold-plated bottle cap with elegant design.")),
		newProduct("3", "Plastic Bottle Cap - Blue", "Bottle Caps", withPrice(99), withStock(0), withCreated(2),
			withDescription("Durable plastic bottle cap in vibrant blue color.")),
		newProduct("4", "Stainless Steel Bottle Cap", "Bottle Caps", withCreated(3),
			withDescription("Heavy-duty stainless steel bottle cap.")),
		newProduct("5", "500ml Pesticide Bottle", "Pesticide Bottles", withPrice(1299), withStock(50), withCreated(4),
			withDescription("Professional-grade 500ml pesticide bottle.")),
		newProduct("6", "1L Agricultural Spray Bottle", "Pesticide Bottles", withPrice(2499), withStock(10), withCreated(5),
			withDescription("Large capacity 1-liter spray bottle designed for agricultural use.")),
		newProduct("7", "Trigger Sprayer Head", "Accessories", withPrice(150), withStock(3), withCreated(6)),
	}
}

func TestApply_scenarioA_categoryAndStock(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("a", "Blue Cap", "Bottle Caps", withPrice(99), withStock(0)),
		newProduct("b", "Gold Cap", "Bottle Caps", withPrice(499), withStock(75)),
	}
	cfg := DefaultFilterConfig()
	cfg.Category = "Bottle Caps"
	cfg.InStockOnly = true

	got := Apply(list, cfg)

	require.Equal(t, []string{"Gold Cap"}, names(got))
}

func TestApply_scenarioB_searchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("1", "1L Agricultural Spray Bottle", "Pesticide Bottles"),
		newProduct("2", "Premium Glass Bottle Cap", "Bottle Caps"),
	}

	for _, search := range []string{"spray", "SPRAY", "SpRaY"} {
		cfg := DefaultFilterConfig()
		cfg.SearchText = search

		require.Equal(t, []string{"1L Agricultural Spray Bottle"}, names(Apply(list, cfg)), search)
	}
}

func TestApply_scenarioC_sortByName(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("1", "Gold Cap", "Bottle Caps"),
		newProduct("2", "Blue Cap", "Bottle Caps"),
	}
	cfg := DefaultFilterConfig()
	cfg.SortKey = SortByName

	require.Equal(t, []string{"Blue Cap", "Gold Cap"}, names(Apply(list, cfg)))
}

func TestApply_scenarioD_nullPriceCountsAsZero(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("null", "No Price", "Bottle Caps"),
		newProduct("one", "One", "Bottle Caps", withPrice(1)),
	}
	cfg := DefaultFilterConfig()
	cfg.PriceRange = PriceRange{Min: 0, Max: 0}

	require.Equal(t, []string{"null"}, ids(Apply(list, cfg)))
}

func TestApply_nullPriceExcludedOnceMinIsPositive(t *testing.T) {
	t.Parallel()

	list := []domain.Product{newProduct("null", "No Price", "Bottle Caps")}

	for _, max := range []int64{0, 1, 100, MaxPrice} {
		cfg := DefaultFilterConfig()
		cfg.PriceRange = PriceRange{Min: 0, Max: max}
		require.Len(t, Apply(list, cfg), 1, "max=%d", max)
	}

	cfg := DefaultFilterConfig()
	cfg.PriceRange = PriceRange{Min: 1, Max: 100}
	require.Empty(t, Apply(list, cfg))
}

func TestApply_defaultConfigKeepsMembershipAndSortsNewestFirst(t *testing.T) {
	t.Parallel()

	list := fixture()
	got := Apply(list, DefaultFilterConfig())

	require.ElementsMatch(t, ids(list), ids(got))
	require.Equal(t, []string{"7", "6", "5", "4", "3", "2", "1"}, ids(got))
}

func TestApply_priceRangeIsInclusive(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.PriceRange = PriceRange{Min: 250, Max: 1299}

	got := Apply(fixture(), cfg)

	require.ElementsMatch(t, []string{"1", "2", "5"}, ids(got))
}

func TestApply_categoryIsExactAndCaseSensitive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		want     []string
	}{
		{category: "Bottle Caps", want: []string{"4", "3", "2", "1"}},
		{category: "bottle caps", want: []string{}},
		{category: "Bottle", want: []string{}},
		{category: "Accessories", want: []string{"7"}},
		{category: AllCategories, want: []string{"7", "6", "5", "4", "3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			cfg := DefaultFilterConfig()
			cfg.Category = tt.category
			require.Equal(t, tt.want, ids(Apply(fixture(), cfg)))
		})
	}
}

func TestApply_searchMatchesDescription(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.SearchText = "LUXURIOUS"

	require.Equal(t, []string{"2"}, ids(Apply(fixture(), cfg)))
}

func TestApply_nilDescriptionOnlyMatchesByName(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("1", "Trigger Sprayer Head", "Accessories"),
		newProduct("2", "Cap", "Accessories"),
	}

	cfg := DefaultFilterConfig()
	cfg.SearchText = "sprayer"
	require.Equal(t, []string{"1"}, ids(Apply(list, cfg)))

	cfg.SearchText = ""
	require.Len(t, Apply(list, cfg), 2)
}

func TestApply_sortByCategory(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.SortKey = SortByCategory

	got := Apply(fixture(), cfg)

	categories := make([]string, 0, len(got))
	for _, p := range got {
		categories = append(categories, p.Category)
	}
	require.Equal(t, []string{
		"Accessories",
		"Bottle Caps", "Bottle Caps", "Bottle Caps", "Bottle Caps",
		"Pesticide Bottles", "Pesticide Bottles",
	}, categories)
	// Внутри категории сохраняется входной порядок.
	require.Equal(t, []string{"7", "1", "2", "3", "4", "5", "6"}, ids(got))
}

func TestApply_sortByNameIsLocaleAware(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("1", "zinc cap", "Caps"),
		newProduct("2", "Brass cap", "Caps"),
		newProduct("3", "Émail cap", "Caps"),
		newProduct("4", "apple cap", "Caps"),
	}
	cfg := DefaultFilterConfig()
	cfg.SortKey = SortByName

	require.Equal(t, []string{"apple cap", "Brass cap", "Émail cap", "zinc cap"}, names(Apply(list, cfg)))
}

func TestApply_newestSortIsStableForEqualTimestamps(t *testing.T) {
	t.Parallel()

	list := []domain.Product{
		newProduct("old", "Old", "Caps", withCreated(-1)),
		newProduct("a", "A", "Caps"),
		newProduct("b", "B", "Caps"),
		newProduct("c", "C", "Caps"),
		newProduct("new", "New", "Caps", withCreated(1)),
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, []string{"new", "a", "b", "c", "old"}, ids(Apply(list, DefaultFilterConfig())))
	}
}

func TestApply_unknownSortKeyFallsBackToNewest(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.SortKey = "price"

	require.Equal(t, []string{"7", "6", "5", "4", "3", "2", "1"}, ids(Apply(fixture(), cfg)))
}

func TestApply_doesNotMutateInput(t *testing.T) {
	t.Parallel()

	list := fixture()
	before := slices.Clone(list)
	cfg := DefaultFilterConfig()
	cfg.SortKey = SortByName
	cfg.SearchText = "cap"
	cfgBefore := cfg

	got := Apply(list, cfg)
	require.NotEmpty(t, got)

	require.Equal(t, before, list)
	require.Equal(t, cfgBefore, cfg)

	got[0].Name = "changed"
	require.Equal(t, before, list)
}

func TestApply_emptyInput(t *testing.T) {
	t.Parallel()

	got := Apply(nil, DefaultFilterConfig())
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestApply_minGreaterThanMaxYieldsNothing(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()
	cfg.PriceRange = PriceRange{Min: 500, Max: 100}

	require.Empty(t, Apply(fixture(), cfg))
}

// Результат — подмножество входа, совпадающее с конъюнкцией четырёх предикатов.
func TestApply_membershipEqualsPredicateConjunction(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 7))
	categories := []string{AllCategories, "Bottle Caps", "Pesticide Bottles", "Accessories", "Unknown"}
	searches := []string{"", "cap", "BOTTLE", "spray", "zzz", "-"}
	sorts := []SortKey{SortByName, SortByCategory, SortByNewest}
	list := fixture()

	for i := 0; i < 500; i++ {
		minPrice := rng.Int64N(1500)
		cfg := FilterConfig{
			Category:    categories[rng.IntN(len(categories))],
			SearchText:  searches[rng.IntN(len(searches))],
			PriceRange:  PriceRange{Min: minPrice, Max: minPrice + rng.Int64N(2000)},
			InStockOnly: rng.IntN(2) == 0,
			SortKey:     sorts[rng.IntN(len(sorts))],
		}

		want := make(map[string]bool)
		for i := range list {
			p := &list[i]
			if matchesCategory(p, cfg.Category) && matchesSearch(p, strings.ToLower(cfg.SearchText)) &&
				cfg.PriceRange.Contains(p.PriceOrZero()) && (!cfg.InStockOnly || p.StockQuantity > 0) {
				want[p.ID] = true
			}
		}

		got := Apply(list, cfg)
		require.Len(t, got, len(want), fmt.Sprintf("%+v", cfg))
		for _, p := range got {
			assert.True(t, want[p.ID], "unexpected product %s for %+v", p.ID, cfg)
		}
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	list := fixture()

	tests := []struct {
		name    string
		page    int
		perPage int
		want    []string
	}{
		{name: "disabled", page: 3, perPage: 0, want: ids(list)},
		{name: "first page", page: 1, perPage: 3, want: []string{"1", "2", "3"}},
		{name: "last partial page", page: 3, perPage: 3, want: []string{"7"}},
		{name: "out of range", page: 4, perPage: 3, want: []string{}},
		{name: "page below one", page: 0, perPage: 2, want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(Paginate(list, tt.page, tt.perPage)))
		})
	}
}
