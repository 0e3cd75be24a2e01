package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
)

func sampleShops() []*domain.Shop {
	return []*domain.Shop{
		{ID: 1, Name: "Maski", City: "Kraków"},
		{ID: 2, Name: "Bal", City: "Warszawa"},
		{ID: 10, Name: "Cyrk", City: "Kraków"},
		{ID: 3, Name: "Arlekin", City: "Gdańsk"},
	}
}

func ids(shops []*domain.Shop) []int64 {
	out := make([]int64, 0, len(shops))
	for _, s := range shops {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterEquals(t *testing.T) {
	got, err := query.Filter(sampleShops(), domain.Predicate{Field: "CITY", Operator: domain.OperatorEquals, Value: "Kraków"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 10}, ids(got))

	// целое поле сравнивается как число
	got, err = query.Filter(sampleShops(), domain.Predicate{Field: "SHOP_ID", Operator: domain.OperatorEquals, Value: "10"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(got))

	got, err = query.Filter(sampleShops(), domain.Predicate{Field: "SHOP_ID", Operator: domain.OperatorEquals, Value: "ten"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterContains(t *testing.T) {
	got, err := query.Filter(sampleShops(), domain.Predicate{Field: "SHOP_NAME", Operator: domain.OperatorContains, Value: "a"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))

	_, err = query.Filter(sampleShops(), domain.Predicate{Field: "SHOP_ID", Operator: domain.OperatorContains, Value: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
}

func TestFilterRejectsUnknownFieldAndOperator(t *testing.T) {
	_, err := query.Filter(sampleShops(), domain.Predicate{Field: "COLOR", Operator: domain.OperatorEquals, Value: "red"})
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)

	_, err = query.Filter(sampleShops(), domain.Predicate{Field: "CITY", Operator: "startsWith", Value: "K"})
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
}

func TestSortNumericAndText(t *testing.T) {
	got, err := query.Sort(sampleShops(), "SHOP_ID", domain.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 10}, ids(got))

	got, err = query.Sort(sampleShops(), "SHOP_NAME", domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 10, 2, 3}, ids(got))

	_, err = query.Sort(sampleShops(), "SHOP_NAME", "UP")
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
}

func TestSortIsStableForTies(t *testing.T) {
	for _, dir := range []domain.SortDirection{domain.SortAsc, domain.SortDesc} {
		got, err := query.Sort(sampleShops(), "CITY", dir)
		require.NoError(t, err)
		var krakow []int64
		for _, s := range got {
			if s.City == "Kraków" {
				krakow = append(krakow, s.ID)
			}
		}
		assert.Equal(t, []int64{1, 10}, krakow, "direction %s", dir)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := sampleShops()
	_, err := query.Sort(in, "SHOP_ID", domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 10, 3}, ids(in))
}

func TestPaginate(t *testing.T) {
	shops := sampleShops()
	cases := []struct {
		page, limit int
		want        []int64
	}{
		{page: 1, limit: 2, want: []int64{1, 2}},
		{page: 2, limit: 3, want: []int64{3}},
		{page: 3, limit: 2, want: []int64{}},
		{page: 99, limit: 10, want: []int64{}},
	}
	for _, tc := range cases {
		got := query.Paginate(shops, tc.page, tc.limit)
		assert.Equal(t, tc.want, ids(got), "page=%d limit=%d", tc.page, tc.limit)
	}
}

func TestPaginateLengthProperty(t *testing.T) {
	shops := sampleShops()
	n := len(shops)
	for page := 1; page <= 6; page++ {
		for limit := 1; limit <= 5; limit++ {
			want := n - (page-1)*limit
			if want > limit {
				want = limit
			}
			if want < 0 {
				want = 0
			}
			assert.Len(t, query.Paginate(shops, page, limit), want)
		}
	}
}

func TestScope(t *testing.T) {
	costumes := []*domain.Costume{
		{ID: "a", ShopID: 1},
		{ID: "b", ShopID: 2},
		{ID: "c", ShopID: 1},
	}
	costumes[0].SetExtra("OFFER_ID", "o-1")
	costumes[2].SetExtra("OFFER_ID", "o-2")

	got := query.Scope(costumes, map[string]string{"SHOP_ID": "1", "OFFER_ID": "o-1"})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	// запись без колонки области не совпадает
	got = query.Scope(costumes, map[string]string{"OFFER_ID": "o-2"})
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestApplyDefaults(t *testing.T) {
	got, err := query.Apply(sampleShops(), domain.ListQuery{}, "SHOP_NAME")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 10, 1}, ids(got))

	got, err = query.Apply(sampleShops(), domain.ListQuery{
		Filter:        &domain.Predicate{Field: "CITY", Operator: domain.OperatorEquals, Value: "Kraków"},
		SortField:     "SHOP_ID",
		SortDirection: "desc",
		Page:          1,
		Limit:         1,
	}, "SHOP_NAME")
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(got))
}

func TestApplyRejectsNegativePaging(t *testing.T) {
	_, err := query.Apply(sampleShops(), domain.ListQuery{Page: -1}, "SHOP_NAME")
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
	_, err = query.Apply(sampleShops(), domain.ListQuery{Limit: -5}, "SHOP_NAME")
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
}

func TestSortIsIdempotent(t *testing.T) {
	shops := []*domain.Shop{
		{ID: 4, Name: "Bal", City: "Kraków", Address: "Rynek 1", Phone: "111"},
		{ID: 1, Name: "Maski", City: "Gdańsk", Address: "Długa 3", Phone: "222"},
		{ID: 7, Name: "Bal", City: "Kraków", Address: "Rynek 1", Phone: "111"},
		{ID: 2, Name: "Arlekin", City: "Kraków", Address: "Floriańska 9", Phone: "222"},
		{ID: 9, Name: "Maski", City: "Warszawa", Address: "Długa 3", Phone: "111"},
	}

	for _, field := range domain.ShopSchema.Header() {
		for _, dir := range []domain.SortDirection{domain.SortAsc, domain.SortDesc} {
			once, err := query.Sort(shops, field, dir)
			require.NoError(t, err)
			twice, err := query.Sort(once, field, dir)
			require.NoError(t, err)
			assert.Equal(t, ids(once), ids(twice), "%s %s", field, dir)
		}
	}
}
