package http

import (
	"time"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
	"github.com/Elavasaran/yummie-mart-porta/internal/seller"
)

type CartLineDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	Image     string `json:"image"`
}

type CartDTO struct {
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  string        `json:"subtotal"`
	Tax       string        `json:"tax"`
	Total     string        `json:"total"`
}

type OrderDTO struct {
	ID       string    `json:"id"`
	PlacedAt time.Time `json:"placed_at"`
	Total    string    `json:"total"`
	Items    int       `json:"items"`
	Status   string    `json:"status"`
}

type ProductDTO struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Seller         string   `json:"seller"`
	Price          string   `json:"price"`
	Image          string   `json:"image"`
	Eligibility    []string `json:"eligibility"`
	Certifications []string `json:"certifications"`
}

type InvoiceDTO struct {
	Number     string    `json:"invoice_number"`
	Amount     string    `json:"amount"`
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type SellerOrderDTO struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customer_name"`
	Products     []string    `json:"products"`
	Total        string      `json:"total"`
	Status       string      `json:"status"`
	Address      string      `json:"address"`
	Phone        string      `json:"phone"`
	Date         string      `json:"date"`
	Invoice      *InvoiceDTO `json:"invoice,omitempty"`
}

type QuoteDTO struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	RequestDate  string `json:"request_date"`
	Status       string `json:"status"`
	SellerQuote  string `json:"seller_quote,omitempty"`
	FinalPrice   string `json:"final_price,omitempty"`
}

type QuoteListDTO struct {
	Quotes []QuoteDTO     `json:"quotes"`
	Counts map[string]int `json:"counts"`
}

func toCartDTO(lines []domain.CartLine, totals domain.Totals) CartDTO {
	items := make([]CartLineDTO, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: domain.Money(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: domain.Money(l.LineTotal()),
			Image:     l.ImageRef,
		})
	}
	return CartDTO{
		Items:     items,
		ItemCount: domain.ItemCount(lines),
		Subtotal:  domain.Money(totals.Subtotal),
		Tax:       domain.Money(totals.Tax),
		Total:     domain.Money(totals.Total),
	}
}

func toOrderDTO(o domain.Order) OrderDTO {
	return OrderDTO{
		ID:       o.ID,
		PlacedAt: o.PlacedAt,
		Total:    domain.Money(o.Total),
		Items:    o.LineCount,
		Status:   o.Status.String(),
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toProductDTOs(products []*domain.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{
			ID:             p.ID,
			Name:           p.Name,
			Seller:         p.Seller,
			Price:          domain.Money(p.Price),
			Image:          p.ImageRef,
			Eligibility:    nonNil(p.Eligibility),
			Certifications: nonNil(p.Certifications),
		})
	}
	return out
}

func toSellerOrderDTO(o seller.Order) SellerOrderDTO {
	dto := SellerOrderDTO{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Products:     nonNil(o.Products),
		Total:        domain.Money(o.Total),
		Status:       string(o.Status),
		Address:      o.Address,
		Phone:        o.Phone,
		Date:         o.Date,
	}
	if o.Invoice != nil {
		dto.Invoice = &InvoiceDTO{
			Number:     o.Invoice.Number,
			Amount:     domain.Money(o.Invoice.Amount),
			File:       o.Invoice.FileRef,
			UploadedAt: o.Invoice.UploadedAt,
		}
	}
	return dto
}

func toQuoteDTO(q seller.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:           q.ID,
		CustomerName: q.CustomerName,
		ProductName:  q.ProductName,
		Quantity:     q.Quantity,
		RequestDate:  q.RequestDate,
		Status:       string(q.Status),
	}
	if q.Priced() {
		dto.SellerQuote = domain.Money(q.SellerQuote)
		dto.FinalPrice = domain.Money(q.FinalPrice)
	}
	return dto
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
