package quote

import (
	"github.com/loudachris/tradievoice/internal/dto"
	"github.com/loudachris/tradievoice/internal/ledger"
)

const defaultCustomerName = "Valued Customer"

func toQuoteData(customerName, notes string, snap ledger.Snapshot) dto.QuoteData {
	if customerName == "" {
		customerName = defaultCustomerName
	}

	items := make([]dto.QuoteItem, len(snap.Items))
	for i, item := range snap.Items {
		items[i] = dto.QuoteItem{
			Description: item.Description,
			Quantity:    item.Quantity.InexactFloat64(),
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Total:       item.Amount.InexactFloat64(),
		}
	}

	return dto.QuoteData{
		CustomerName:      customerName,
		Items:             items,
		TotalAmount:       snap.Total.InexactFloat64(),
		Notes:             notes,
		UpsellOpportunity: snap.UpsellActive,
	}
}

func toSessionDTO(sess *Session, snap ledger.Snapshot) dto.QuoteSession {
	return dto.QuoteSession{
		ID:        sess.ID,
		Mode:      string(sess.Mode),
		Quote:     toQuoteData(sess.CustomerName, sess.Notes, snap),
		CreatedAt: sess.CreatedAt,
	}
}
