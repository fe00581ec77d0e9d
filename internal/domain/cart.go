package domain

import (
	"github.com/shopspring/decimal"
)

// CartLine is one product entry in a cart. Quantity is always at least 1;
// a line that would drop to zero is removed instead.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image"`
}

// NewCartLine builds a single-unit line from a product descriptor.
func NewCartLine(p Product) (CartLine, error) {
	if err := p.Validate(); err != nil {
		return CartLine{}, err
	}
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		ImageRef:  p.ImageRef,
	}, nil
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemCount sums quantities across lines (the navbar badge count).
func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// SessionSnapshot is the full state of one shopping session.
type SessionSnapshot struct {
	Cart   []CartLine `json:"cart"`
	Orders []Order    `json:"orders"`
}
