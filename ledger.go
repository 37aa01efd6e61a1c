package fiscal

import (
	"iter"
	"sort"
)

// Ledger is the ordered, append-only list of transactions.
//
// In a Ledger transactions are always in chronological order; same-day
// transactions keep their insertion order, which makes replay a
// deterministic total order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append validates and appends transactions, maintaining chronological order.
// On the first invalid transaction nothing is appended.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
	return nil
}

// stableSort sorts the ledger by transaction date. The sort is stable, so
// transactions on the same day keep their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over all transactions in chronological order.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// TickerTransactions returns an iterator over one ticker's transactions up
// to and including the max date, in chronological order.
func (l *Ledger) TickerTransactions(ticker string, max Date) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.When().After(max) {
				// The ledger is sorted by date, so it's safe to return.
				return
			}
			if tx.Ticker() != ticker {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Buys returns an iterator over all Buy transactions of a ticker, with no
// date bound. Used by the wash-sale detector, whose window extends past the
// sale date.
func (l *Ledger) Buys(ticker string) iter.Seq[Buy] {
	return func(yield func(Buy) bool) {
		for _, tx := range l.transactions {
			if buy, ok := tx.(Buy); ok && buy.Security == ticker {
				if !yield(buy) {
					return
				}
			}
		}
	}
}

// Tickers returns the sorted list of tickers appearing in the ledger.
func (l *Ledger) Tickers() []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, tx := range l.transactions {
		if _, ok := seen[tx.Ticker()]; !ok {
			seen[tx.Ticker()] = struct{}{}
			tickers = append(tickers, tx.Ticker())
		}
	}
	sort.Strings(tickers)
	return tickers
}

// Name returns the latest non-empty display name recorded for a ticker.
func (l *Ledger) Name(ticker string) string {
	name := ticker
	for _, tx := range l.transactions {
		if tx.Ticker() != ticker {
			continue
		}
		switch v := tx.(type) {
		case Buy:
			if v.Name != "" {
				name = v.Name
			}
		case Sell:
			if v.Name != "" {
				name = v.Name
			}
		case TransferIn:
			if v.Name != "" {
				name = v.Name
			}
		case TransferOut:
			if v.Name != "" {
				name = v.Name
			}
		}
	}
	return name
}

// OldestTransactionDate returns the date of the earliest transaction, or the
// zero date for an empty ledger.
func (l *Ledger) OldestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[0].When()
}

// NewestTransactionDate returns the date of the latest transaction, or the
// zero date for an empty ledger.
func (l *Ledger) NewestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[len(l.transactions)-1].When()
}
