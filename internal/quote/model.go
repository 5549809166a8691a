package quote

import (
	"time"

	"github.com/loudachris/tradievoice/internal/ledger"
)

// Session is one running quote. Items are append-only; the total and
// upsell signal are never stored, they are re-derived through the ledger
// on every read. UpsellNotified records that the one-shot crossing
// notification has been emitted, so replaying the items on a later
// request does not emit it again.
type Session struct {
	ID             string            `json:"id"`
	Mode           ledger.Mode       `json:"mode"`
	CustomerName   string            `json:"customer_name"`
	Notes          string            `json:"notes"`
	Items          []ledger.LineItem `json:"items"`
	UpsellNotified bool              `json:"upsell_notified"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (s *Session) RedisKey() string {
	return "quote:" + s.ID
}
