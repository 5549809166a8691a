package extraction

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/loudachris/tradievoice/internal/ledger"
)

// Coerce converts an untrusted raw quote into validated ledger items.
// Malformed entries are dropped rather than allowed to corrupt the total:
// a non-finite or negative amount disqualifies the item, and a missing
// total is rebuilt from quantity and unit price when those are usable.
// The second return value is the number of items dropped.
func Coerce(raw *RawQuote) ([]ledger.LineItem, int) {
	if raw == nil {
		return nil, 0
	}

	items := make([]ledger.LineItem, 0, len(raw.Items))
	dropped := 0

	for _, ri := range raw.Items {
		amount, ok := itemAmount(ri)
		if !ok {
			dropped++
			continue
		}

		quantity := decimal.NewFromInt(1)
		if isUsable(ri.Quantity) && ri.Quantity > 0 {
			quantity = money(ri.Quantity)
		}

		unitPrice := amount
		if isUsable(ri.UnitPrice) && ri.UnitPrice >= 0 {
			unitPrice = money(ri.UnitPrice)
		}

		items = append(items, ledger.LineItem{
			Description: strings.TrimSpace(ri.Description),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Amount:      amount,
		})
	}

	return items, dropped
}

func itemAmount(ri RawItem) (decimal.Decimal, bool) {
	if !isUsable(ri.Total) || ri.Total < 0 {
		return decimal.Decimal{}, false
	}
	if ri.Total > 0 {
		return money(ri.Total), true
	}
	// Zero total: rebuild from quantity and unit price when both are usable.
	if isUsable(ri.Quantity) && isUsable(ri.UnitPrice) && ri.Quantity > 0 && ri.UnitPrice > 0 {
		return money(ri.Quantity).Mul(money(ri.UnitPrice)).Round(2), true
	}
	return decimal.Zero, true
}

func isUsable(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
