package extraction

import "time"

type Config struct {
	// BaseURL of an OpenAI-compatible API, without the /v1 suffix.
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RawQuote is the untrusted payload the language model produces from a
// transcript. Totals and the upsell flag are advisory only; the server
// re-derives both from coerced line items.
type RawQuote struct {
	CustomerName      string    `json:"customer_name"`
	Items             []RawItem `json:"items"`
	TotalAmount       float64   `json:"total_amount"`
	Notes             string    `json:"notes"`
	UpsellOpportunity bool      `json:"upsell_opportunity"`
}

type RawItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}
