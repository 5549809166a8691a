package dto

import "time"

// QuoteItem and QuoteData preserve the wire shape the PWA client already
// speaks: plain JSON numbers, totals included.
type QuoteItem struct {
	Description string  `json:"description" example:"Rewire living room"`
	Quantity    float64 `json:"quantity" example:"1"`
	UnitPrice   float64 `json:"unit_price" example:"500"`
	Total       float64 `json:"total" example:"500"`
}

type QuoteData struct {
	CustomerName      string      `json:"customer_name" example:"Valued Customer"`
	Items             []QuoteItem `json:"items"`
	TotalAmount       float64     `json:"total_amount" example:"1100"`
	Notes             string      `json:"notes" example:"Work across two rooms"`
	UpsellOpportunity bool        `json:"upsell_opportunity" example:"false"`
}

type QuoteSession struct {
	ID        string    `json:"id" example:"quote_1f2e3d"`
	Mode      string    `json:"mode" example:"command"`
	Quote     QuoteData `json:"quote"`
	CreatedAt time.Time `json:"created_at"`
}

type AddItemRequest struct {
	Description string  `json:"description" example:"Fit new tapware"`
	Quantity    float64 `json:"quantity" example:"1"`
	UnitPrice   float64 `json:"unit_price" example:"200.50"`
	Total       float64 `json:"total" example:"200.50"`
}

type SetModeRequest struct {
	Mode string `json:"mode" example:"walkthrough"`
}

type GenerateInvoiceRequest struct {
	QuoteData QuoteData `json:"quote_data"`
}
