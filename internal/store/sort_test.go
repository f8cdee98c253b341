package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hitoshi/storelist/internal/model"
)

func district(s string) *string { return &s }

func names(stores []*model.Store) []string {
	out := make([]string, len(stores))
	for i, s := range stores {
		out[i] = s.Name
	}
	return out
}

func TestParseSortCriteria(t *testing.T) {
	tests := []struct {
		in      string
		want    SortCriteria
		wantErr bool
	}{
		{"", SortNone, false},
		{"name", SortByName, false},
		{"district", SortByDistrict, false},
		{"price_range", SortNone, true},
		{"NAME", SortNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortCriteria(tt.in)
			if tt.wantErr {
				var apiErr *model.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, model.ErrCodeInvalidSort, apiErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSorter_ByName_CaseInsensitive(t *testing.T) {
	stores := []*model.Store{
		{ID: 1, Name: "zara"},
		{ID: 2, Name: "Apotek"},
		{ID: 3, Name: "bageri"},
		{ID: 4, Name: "Cafe"},
	}

	NewSorter(language.English).Sort(stores, SortByName)

	assert.Equal(t, []string{"Apotek", "bageri", "Cafe", "zara"}, names(stores))
}

// 大文字小文字だけが異なる名前は元の順序を保つ。
func TestSorter_ByName_StableForEqualKeys(t *testing.T) {
	stores := []*model.Store{
		{ID: 1, Name: "Lindex"},
		{ID: 2, Name: "apple"},
		{ID: 3, Name: "LINDEX"},
		{ID: 4, Name: "lindex"},
	}

	NewSorter(language.English).Sort(stores, SortByName)

	assert.Equal(t, []int64{2, 1, 3, 4}, ids(stores))
}

func TestSorter_ByName_SwedishLocale(t *testing.T) {
	stores := []*model.Store{
		{Name: "Örnen"},
		{Name: "Åhléns"},
		{Name: "Zara"},
		{Name: "Apotek"},
		{Name: "Äppelbod"},
	}

	NewSorter(language.Swedish).Sort(stores, SortByName)

	assert.Equal(t, []string{"Apotek", "Zara", "Åhléns", "Äppelbod", "Örnen"}, names(stores))
}

func TestSorter_ByDistrict_MissingDistrictLast(t *testing.T) {
	stores := []*model.Store{
		{ID: 1, Name: "no-district-nil"},
		{ID: 2, Name: "väster", District: district("Väster")},
		{ID: 3, Name: "no-district-empty", District: district("")},
		{ID: 4, Name: "centrum", District: district("centrum")},
		{ID: 5, Name: "Öster", District: district("Öster")},
		{ID: 6, Name: "another-centrum", District: district("Centrum")},
	}

	NewSorter(language.Swedish).Sort(stores, SortByDistrict)

	assert.Equal(t, []int64{4, 6, 2, 5, 1, 3}, ids(stores))
}

func TestSorter_SortNone_KeepsOrder(t *testing.T) {
	stores := []*model.Store{{ID: 3}, {ID: 1}, {ID: 2}}

	NewSorter(language.Swedish).Sort(stores, SortNone)

	assert.Equal(t, []int64{3, 1, 2}, ids(stores))
}
