package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("item amount must be a non-negative value")

	// DefaultUpsellThreshold is the quote total above which the upsell
	// prompt is raised. Strictly greater-than: a quote of exactly
	// 10000.00 does not qualify.
	DefaultUpsellThreshold = decimal.NewFromInt(10000)
)

// placeholder shown for items whose transcription produced no description.
const placeholderDescription = "Item"

type Mode string

const (
	ModeCommand     Mode = "command"
	ModeWalkthrough Mode = "walkthrough"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCommand:
		return ModeCommand, nil
	case ModeWalkthrough:
		return ModeWalkthrough, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// LineItem is one priced entry in a quote. Amount is the charged value the
// ledger sums; Quantity and UnitPrice are carried through for invoice
// rendering and are not re-derived.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"total"`
}

// Snapshot is the observable state handed to subscribers after every
// mutation. Total and UpsellActive are derived, never stored inputs.
type Snapshot struct {
	Items        []LineItem
	Mode         Mode
	Total        decimal.Decimal
	UpsellActive bool
}

type Options struct {
	// Threshold overrides DefaultUpsellThreshold when positive.
	Threshold decimal.Decimal

	// OnUpsell fires exactly once per crossing from at-or-below to above
	// the threshold. It does not fire again until the total has dropped
	// back to or below the threshold.
	OnUpsell func(total decimal.Decimal)
}

// Ledger holds the in-progress quote: an append-only item sequence, the
// capture mode, and the derived total and upsell signal. Items cannot be
// edited or removed once added; Reset starts a new quote.
type Ledger struct {
	mu        sync.RWMutex
	items     []LineItem
	mode      Mode
	threshold decimal.Decimal
	upsell    bool
	onUpsell  func(decimal.Decimal)
	observers []func(Snapshot)
}

func New(opts Options) *Ledger {
	threshold := opts.Threshold
	if !threshold.IsPositive() {
		threshold = DefaultUpsellThreshold
	}
	return &Ledger{
		mode:      ModeCommand,
		threshold: threshold,
		onUpsell:  opts.OnUpsell,
	}
}

// Sum returns the exact total of the given items. Decimal arithmetic, so
// repeated accumulation cannot drift from the two-decimal currency values.
func Sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// OverThreshold reports whether a total qualifies for the upsell prompt.
// Exactly the threshold does not.
func OverThreshold(total, threshold decimal.Decimal) bool {
	return total.GreaterThan(threshold)
}

// Subscribe registers an observer invoked synchronously after every
// mutation. Registration order is invocation order.
func (l *Ledger) Subscribe(fn func(Snapshot)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// AddItem appends an item. A negative amount is rejected without mutating
// the ledger; an empty description is accepted and replaced with a
// placeholder, since items come from semi-trusted transcription output.
func (l *Ledger) AddItem(item LineItem) error {
	if item.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, item.Amount)
	}
	if strings.TrimSpace(item.Description) == "" {
		item.Description = placeholderDescription
	}

	l.mu.Lock()
	l.items = append(l.items, item)
	l.recomputeLocked()
	snap := l.snapshotLocked()
	observers := l.observers
	l.mu.Unlock()

	notify(observers, snap)
	return nil
}

// Reset clears the quote. The upsell signal drops with the total; no
// activation notification fires.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.items = nil
	l.recomputeLocked()
	snap := l.snapshotLocked()
	observers := l.observers
	l.mu.Unlock()

	notify(observers, snap)
}

// SetMode switches the capture mode. Items and total are unaffected.
func (l *Ledger) SetMode(m Mode) error {
	if m != ModeCommand && m != ModeWalkthrough {
		return fmt.Errorf("unknown mode %q", m)
	}

	l.mu.Lock()
	l.mode = m
	snap := l.snapshotLocked()
	observers := l.observers
	l.mu.Unlock()

	notify(observers, snap)
	return nil
}

func (l *Ledger) Total() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Sum(l.items)
}

func (l *Ledger) UpsellActive() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.upsell
}

func (l *Ledger) Mode() Mode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mode
}

func (l *Ledger) Items() []LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := make([]LineItem, len(l.items))
	copy(items, l.items)
	return items
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// recomputeLocked re-derives the upsell level state from the item sequence
// and fires the one-shot activation hook on a rising edge. The boolean
// itself stays level-triggered: true for as long as the total is above the
// threshold, false otherwise.
func (l *Ledger) recomputeLocked() {
	wasActive := l.upsell
	total := Sum(l.items)
	l.upsell = OverThreshold(total, l.threshold)
	if l.upsell && !wasActive && l.onUpsell != nil {
		l.onUpsell(total)
	}
}

func (l *Ledger) snapshotLocked() Snapshot {
	items := make([]LineItem, len(l.items))
	copy(items, l.items)
	return Snapshot{
		Items:        items,
		Mode:         l.mode,
		Total:        Sum(l.items),
		UpsellActive: l.upsell,
	}
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
