package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

func TestParseValue(t *testing.T) {
	v, err := domain.ParseValue(domain.FieldInt, " 42 ")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldInt, v.Type())
	assert.Equal(t, int64(42), v.Int())

	empty, err := domain.ParseValue(domain.FieldInt, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Int())

	_, err = domain.ParseValue(domain.FieldInt, "abc")
	require.Error(t, err)

	text, err := domain.ParseValue(domain.FieldString, "007")
	require.NoError(t, err)
	assert.Equal(t, "007", text.String())
}

func TestValueCompare(t *testing.T) {
	// целые сравниваются численно, а не лексикографически
	assert.Equal(t, -1, domain.IntValue(2).Compare(domain.IntValue(10)))
	assert.Equal(t, 1, domain.StringValue("2").Compare(domain.StringValue("10")))
	assert.Equal(t, 0, domain.StringValue("Kraków").Compare(domain.StringValue("Kraków")))
	assert.True(t, domain.IntValue(7).Equal(domain.IntValue(7)))
}

func TestValueTruthy(t *testing.T) {
	assert.False(t, domain.IntValue(0).Truthy())
	assert.True(t, domain.IntValue(-1).Truthy())
	assert.False(t, domain.StringValue("").Truthy())
	assert.False(t, domain.Value{}.Truthy())
	assert.True(t, domain.StringValue("0").Truthy())
}

func TestCoerce(t *testing.T) {
	v, err := domain.Coerce(domain.FieldInt, domain.StringValue("15"))
	require.NoError(t, err)
	assert.Equal(t, int64(15), v.Int())

	s, err := domain.Coerce(domain.FieldString, domain.IntValue(3))
	require.NoError(t, err)
	assert.Equal(t, domain.FieldString, s.Type())
	assert.Equal(t, "3", s.String())

	_, err = domain.Coerce(domain.FieldInt, domain.StringValue("3.5"))
	assert.Error(t, err)
}

func TestParseSortDirection(t *testing.T) {
	for raw, want := range map[string]domain.SortDirection{"": domain.SortAsc, "asc": domain.SortAsc, "Desc": domain.SortDesc} {
		got, err := domain.ParseSortDirection(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseSortDirection("sideways")
	assert.ErrorIs(t, err, domain.ErrInvalidOperand)
}
