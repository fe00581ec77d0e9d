package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

// Product is a catalog entry as shown to customers.
type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Seller         string          `json:"seller"`
	Price          decimal.Decimal `json:"price"`
	ImageRef       string          `json:"image"`
	Eligibility    []string        `json:"eligibility"`
	Certifications []string        `json:"certifications"`
}

// Validate checks the fields a cart line is built from.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidProduct, p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}
