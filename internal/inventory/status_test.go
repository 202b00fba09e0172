package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		total, available, minimum int
		want                      Status
	}{
		{5, 5, 5, StatusLowStock},
		{0, 0, 5, StatusOutOfStock},
		{0, 0, 0, StatusOutOfStock},
		{6, 6, 5, StatusAvailable},
		{1, 1, 0, StatusAvailable},
		{3, 0, 1, StatusAvailable}, // everything on loan is still owned
		{2, 0, 2, StatusLowStock},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.total, tc.available, tc.minimum),
			"total=%d available=%d minimum=%d", tc.total, tc.available, tc.minimum)
	}
}

func TestStatusCaseSQL(t *testing.T) {
	got := StatusCaseSQL("i.total_stock", "i.minimum")
	assert.Equal(t,
		"CASE WHEN i.total_stock <= 0 THEN 'OutOfStock' WHEN i.total_stock <= i.minimum THEN 'LowStock' ELSE 'Available' END",
		got)
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("lowstock")
	assert.True(t, ok)
	assert.Equal(t, StatusLowStock, st)

	_, ok = ParseStatus("Discontinued")
	assert.False(t, ok)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageSize}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 3, Limit: MaxPageSize}, Page{Page: 3, Limit: 1000}.Normalize())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())
}

func TestValidateInput_FieldPaths(t *testing.T) {
	err := validateInput(StockOutInput{
		Lines: []LineInput{{ItemID: "nope", Quantity: 0}},
	})
	var verr *ValidationError
	if assert.ErrorAs(t, err, &verr) {
		fields := map[string]string{}
		for _, f := range verr.Fields {
			fields[f.Field] = f.Reason
		}
		assert.Equal(t, "is required", fields["date"])
		assert.Equal(t, "must be a UUID", fields["items[0].item_id"])
		assert.Equal(t, "must be greater than 0", fields["items[0].quantity"])
	}
	assert.ErrorIs(t, err, ErrValidation)
}
