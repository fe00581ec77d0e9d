package seller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrQuoteNotFound     = errors.New("quote not found")
	ErrInvalidQuotePrice = errors.New("quote price must be a positive amount")
	ErrQuoteNotPending   = errors.New("quote is not awaiting a price")
)

type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteSubmitted QuoteStatus = "submitted"
	QuoteApproved  QuoteStatus = "approved"
	QuoteRejected  QuoteStatus = "rejected"
)

// ConvenienceFeeRate is added on top of the seller's price to give the
// amount the customer is quoted.
var ConvenienceFeeRate = decimal.RequireFromString("0.02")

type Quote struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	RequestDate  string          `json:"request_date"`
	Status       QuoteStatus     `json:"status"`
	SellerQuote  decimal.Decimal `json:"seller_quote"`
	FinalPrice   decimal.Decimal `json:"final_price"`
}

// Priced reports whether the seller has put a price on the quote.
func (q Quote) Priced() bool { return q.Status != QuotePending }

// FinalPriceFor returns the seller price plus the convenience fee, rounded
// to paise.
func FinalPriceFor(price decimal.Decimal) decimal.Decimal {
	return price.Add(price.Mul(ConvenienceFeeRate)).Round(2)
}

// QuoteBook holds the bulk quote requests shown to a seller.
type QuoteBook struct {
	mu     sync.RWMutex
	quotes []Quote
}

func NewQuoteBook(quotes []Quote) *QuoteBook {
	cp := make([]Quote, len(quotes))
	copy(cp, quotes)
	return &QuoteBook{quotes: cp}
}

// NewDemoQuoteBook returns the book preloaded with the demo quote requests.
func NewDemoQuoteBook() *QuoteBook {
	return NewQuoteBook([]Quote{
		{
			ID:           "QT-001",
			CustomerName: "Rajesh Kumar",
			ProductName:  "Fresh Organic Vegetables",
			Quantity:     50,
			RequestDate:  "2024-01-15",
			Status:       QuotePending,
		},
		{
			ID:           "QT-002",
			CustomerName: "Priya Sharma",
			ProductName:  "Premium Fruits Basket",
			Quantity:     30,
			RequestDate:  "2024-01-14",
			Status:       QuoteSubmitted,
			SellerQuote:  decimal.NewFromInt(12000),
			FinalPrice:   decimal.NewFromInt(12240),
		},
		{
			ID:           "QT-003",
			CustomerName: "Amit Patel",
			ProductName:  "Organic Grains Pack",
			Quantity:     100,
			RequestDate:  "2024-01-13",
			Status:       QuoteApproved,
			SellerQuote:  decimal.NewFromInt(59900),
			FinalPrice:   decimal.NewFromInt(61098),
		},
	})
}

func (b *QuoteBook) List() []Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Quote, len(b.quotes))
	copy(out, b.quotes)
	return out
}

func (b *QuoteBook) Get(id string) (Quote, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexOf(id)
	if i < 0 {
		return Quote{}, ErrQuoteNotFound
	}
	return b.quotes[i], nil
}

// CountByStatus returns how many quotes sit in each status. Every status
// is present, zero when empty.
func (b *QuoteBook) CountByStatus() map[QuoteStatus]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := map[QuoteStatus]int{
		QuotePending:   0,
		QuoteSubmitted: 0,
		QuoteApproved:  0,
		QuoteRejected:  0,
	}
	for _, q := range b.quotes {
		counts[q.Status]++
	}
	return counts
}

// SubmitQuote prices a pending quote and moves it to submitted.
func (b *QuoteBook) SubmitQuote(id string, price decimal.Decimal) (Quote, error) {
	if !price.IsPositive() {
		return Quote{}, ErrInvalidQuotePrice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return Quote{}, ErrQuoteNotFound
	}
	if b.quotes[i].Status != QuotePending {
		return Quote{}, fmt.Errorf("submit %s (%s): %w", id, b.quotes[i].Status, ErrQuoteNotPending)
	}

	b.quotes[i].SellerQuote = price
	b.quotes[i].FinalPrice = FinalPriceFor(price)
	b.quotes[i].Status = QuoteSubmitted
	return b.quotes[i], nil
}

func (b *QuoteBook) indexOf(id string) int {
	for i := range b.quotes {
		if b.quotes[i].ID == id {
			return i
		}
	}
	return -1
}
