package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id int64, price string, qty int) CartLine {
	return CartLine{ProductID: id, Name: "p", UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestComputeTotals_TwoUnitsAtHundred(t *testing.T) {
	totals := ComputeTotals([]CartLine{line(1, "100", 2)})

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, totals.Tax.Equal(decimal.NewFromInt(36)))
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(236)))
}

func TestComputeTotals_TotalIsSubtotalTimesRate(t *testing.T) {
	carts := [][]CartLine{
		nil,
		{line(1, "299", 1)},
		{line(1, "299", 3), line(2, "450", 2), line(3, "0.07", 9)},
		{line(4, "249.99", 7), line(5, "0", 4)},
	}
	factor := decimal.RequireFromString("1.18")

	for _, cart := range carts {
		totals := ComputeTotals(cart)
		assert.True(t, totals.Total.Equal(totals.Subtotal.Mul(factor)),
			"total %s != subtotal %s * 1.18", totals.Total, totals.Subtotal)
	}
}

func TestComputeTotals_NoRounding(t *testing.T) {
	totals := ComputeTotals([]CartLine{line(1, "0.01", 1)})

	assert.Equal(t, "0.0018", totals.Tax.String())
	assert.Equal(t, "0.00", Money(totals.Tax))
	assert.Equal(t, "0.01", Money(totals.Total))
}

func TestNewCartLine(t *testing.T) {
	l, err := NewCartLine(Product{ID: 3, Name: "Grains", Price: decimal.NewFromInt(599), ImageRef: "grains.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Quantity)
	assert.Equal(t, "grains.jpg", l.ImageRef)

	_, err = NewCartLine(Product{ID: 0, Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = NewCartLine(Product{ID: 1})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = NewCartLine(Product{ID: 1, Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusStarted, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusDelivered, true},
		{OrderStatusStarted, OrderStatusDelivered, true},
		{OrderStatusProcessing, OrderStatusStarted, false},
		{OrderStatusDelivered, OrderStatusCompleted, false},
		{OrderStatusProcessing, OrderStatusProcessing, false},
		{OrderStatusStarted, OrderStatus("shipped"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.False(t, OrderStatusCompleted.IsTerminal())
}

func TestItemCount(t *testing.T) {
	assert.Equal(t, 0, ItemCount(nil))
	assert.Equal(t, 5, ItemCount([]CartLine{line(1, "1", 2), line(2, "1", 3)}))
}
