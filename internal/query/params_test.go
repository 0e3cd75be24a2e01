package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
)

func TestParamsListQuery(t *testing.T) {
	q, err := query.Params{
		Field:         "CITY",
		Operator:      "Contains",
		Value:         "ków",
		SortField:     "SHOP_ID",
		SortDirection: "desc",
		Page:          "2",
		Limit:         "5",
	}.ListQuery()
	require.NoError(t, err)

	require.NotNil(t, q.Filter)
	assert.Equal(t, domain.Predicate{Field: "CITY", Operator: domain.OperatorContains, Value: "ków"}, *q.Filter)
	assert.Equal(t, "SHOP_ID", q.SortField)
	assert.Equal(t, domain.SortDesc, q.SortDirection)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
}

func TestParamsDefaults(t *testing.T) {
	q, err := query.Params{}.ListQuery()
	require.NoError(t, err)
	assert.Nil(t, q.Filter)
	assert.Equal(t, domain.SortAsc, q.SortDirection)
	assert.Zero(t, q.Page)
	assert.Zero(t, q.Limit)
}

func TestParamsRejectsBadOperands(t *testing.T) {
	cases := map[string]query.Params{
		"page not a number": {Page: "first"},
		"zero limit":        {Limit: "0"},
		"negative page":     {Page: "-1"},
		"bad direction":     {SortDirection: "sideways"},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := params.ListQuery()
			require.ErrorIs(t, err, domain.ErrInvalidOperand)
		})
	}
}
