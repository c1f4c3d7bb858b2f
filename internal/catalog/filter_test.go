package catalog

import (
	"testing"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/require"
)

func TestDefaultFilterConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultFilterConfig()

	require.Equal(t, AllCategories, cfg.Category)
	require.Empty(t, cfg.SearchText)
	require.Equal(t, PriceRange{Min: 0, Max: MaxPrice}, cfg.PriceRange)
	require.False(t, cfg.InStockOnly)
	require.Equal(t, SortByNewest, cfg.SortKey)
	require.NoError(t, cfg.Validate())
}

func TestFilterConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*FilterConfig)
		wantErr error
	}{
		{name: "negative min", mutate: func(c *FilterConfig) { c.PriceRange.Min = -1 }, wantErr: e.ErrInvalidPriceRange},
		{name: "min above max", mutate: func(c *FilterConfig) { c.PriceRange = PriceRange{Min: 10, Max: 5} }, wantErr: e.ErrInvalidPriceRange},
		{name: "equal bounds", mutate: func(c *FilterConfig) { c.PriceRange = PriceRange{Min: 5, Max: 5} }},
		{name: "unknown sort", mutate: func(c *FilterConfig) { c.SortKey = "price" }, wantErr: e.ErrUnknownSortKey},
		{name: "empty sort", mutate: func(c *FilterConfig) { c.SortKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFilterConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]SortKey{"": SortByNewest, "name": SortByName, "category": SortByCategory, "newest": SortByNewest} {
		got, err := ParseSortKey(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseSortKey("Name")
	require.ErrorIs(t, err, e.ErrUnknownSortKey)
}
