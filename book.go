package fiscal

import "sort"

// Book is the reconstructed state of every position as of a date: per-ticker
// open lot queues plus the sale records produced along the way.
//
// A Book is built from scratch on every call and shares no state with the
// ledger, so two replays of the same transaction list always produce
// identical books. Per-ticker replay is independent, which keeps the whole
// reconstruction trivially parallelizable if it ever needs to be.
type Book struct {
	method   Method
	asOf     Date
	cur      string // accounting currency for override gains
	queues   map[string]*LotQueue
	sales    []SaleRecord
	warnings []AmbiguousOrderingWarning
}

// NewBook replays the ledger up to and including asOf and returns the
// resulting book. Replay is strictly chronological; same-day transactions
// follow insertion order and are surfaced as ambiguous-ordering warnings.
// Gain overrides are tagged with the default EUR accounting currency;
// replays under another reporting currency go through newBookIn.
func NewBook(ledger *Ledger, asOf Date, method Method) (*Book, error) {
	return newBookIn(ledger, asOf, method, "EUR")
}

// newBookIn is NewBook with an explicit accounting currency. A gain override
// is recorded pre-converted into that currency, so its records are tagged
// with it rather than with the sale currency.
func newBookIn(ledger *Ledger, asOf Date, method Method, currency string) (*Book, error) {
	b := &Book{
		method: method,
		asOf:   asOf,
		cur:    currency,
		queues: make(map[string]*LotQueue),
	}

	lastByTicker := make(map[string]Transaction)
	for _, tx := range ledger.Transactions() {
		if tx.When().After(asOf) {
			// The ledger is sorted by date, so it's safe to stop.
			break
		}
		if prev, ok := lastByTicker[tx.Ticker()]; ok && prev.When() == tx.When() {
			b.warnings = append(b.warnings, AmbiguousOrderingWarning{
				Ticker: tx.Ticker(),
				On:     tx.When(),
				IDs:    [2]string{prev.ID(), tx.ID()},
			})
		}
		lastByTicker[tx.Ticker()] = tx

		if err := b.apply(tx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// apply replays a single transaction into the book.
func (b *Book) apply(tx Transaction) error {
	q := b.queue(tx.Ticker())
	switch v := tx.(type) {
	case Buy:
		q.acquire(Lot{
			Ticker:          v.Security,
			AcquisitionDate: v.Date,
			Remaining:       v.Quantity,
			Original:        v.Quantity,
			UnitCost:        v.Cost().Div(v.Quantity),
			TransactionID:   v.TxID,
		})
	case TransferIn:
		q.acquire(Lot{
			Ticker:          v.Security,
			AcquisitionDate: v.Date,
			Remaining:       v.Quantity,
			Original:        v.Quantity,
			UnitCost:        v.LotCost().Div(v.Quantity),
			TransactionID:   v.TxID,
			Transferred:     true,
		})
	case Sell:
		records, err := q.dispose(v.Date, v.Quantity, v.NetProceeds(), b.method)
		if err != nil {
			return err
		}
		if v.GainOverride.Valid {
			overrideGains(records, v.GainOverride.Decimal, b.cur)
		}
		b.sales = append(b.sales, records...)
	case TransferOut:
		// Fiscally neutral: no sale records, the cost leaves with the units.
		if err := q.transferOut(v.Date, v.Quantity); err != nil {
			return err
		}
	default:
		return invalidf("unknown transaction kind %q", tx.What())
	}
	return nil
}

// queue returns the lot queue of a ticker, creating it when first touched.
func (b *Book) queue(ticker string) *LotQueue {
	q, ok := b.queues[ticker]
	if !ok {
		q = newLotQueue(ticker)
		b.queues[ticker] = q
	}
	return q
}

// AsOf returns the date the book was replayed to.
func (b *Book) AsOf() Date { return b.asOf }

// Method returns the lot matching method the book was replayed with.
func (b *Book) Method() Method { return b.method }

// Queue returns the lot queue of a ticker, or nil if the ticker never
// appeared in the replayed transactions.
func (b *Book) Queue(ticker string) *LotQueue { return b.queues[ticker] }

// Position returns the open quantity of a ticker.
func (b *Book) Position(ticker string) Quantity {
	q, ok := b.queues[ticker]
	if !ok {
		return Quantity{}
	}
	return q.TotalQuantity()
}

// Sales returns the sale records produced by the replay, in replay order.
func (b *Book) Sales() []SaleRecord { return b.sales }

// Warnings returns the ambiguous-ordering warnings collected during replay.
func (b *Book) Warnings() []AmbiguousOrderingWarning { return b.warnings }

// Tickers returns the sorted tickers the book holds a queue for.
func (b *Book) Tickers() []string {
	tickers := make([]string, 0, len(b.queues))
	for t := range b.queues {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
