package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotals_SumsPerItemInOrder(t *testing.T) {
	ids, need, err := lineTotals([]LineInput{
		{ItemID: "b", Quantity: 2},
		{ItemID: "a", Quantity: 1},
		{ItemID: "b", Quantity: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, map[string]int{"a": 1, "b": 7}, need)
}

func TestLineTotals_Overflow(t *testing.T) {
	_, _, err := lineTotals([]LineInput{
		{ItemID: "a", Quantity: math.MaxInt},
		{ItemID: "b", Quantity: 3},
		{ItemID: "a", Quantity: 2},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items[2].quantity", verr.Fields[0].Field)
}

func TestTotalPrice(t *testing.T) {
	cases := []struct {
		name  string
		lines []LineInput
		want  int64
		field string
	}{
		{"sum", []LineInput{{Quantity: 3, UnitPrice: 250}, {Quantity: 2, UnitPrice: 1000}}, 2750, ""},
		{"free lines", []LineInput{{Quantity: MaxQuantity}}, 0, ""},
		{"line overflows", []LineInput{{Quantity: 10, UnitPrice: math.MaxInt64 / 2}}, 0, "items[0].unit_price"},
		{"sum overflows", []LineInput{
			{Quantity: MaxQuantity, UnitPrice: math.MaxInt64 / MaxQuantity},
			{Quantity: MaxQuantity, UnitPrice: math.MaxInt64 / MaxQuantity},
		}, 0, "items[1].unit_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := totalPrice(tc.lines)
			if tc.field == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}
}
