package fiscal

// Lot is a dated, cost-tagged unconsumed quantity of a security from one
// acquisition event. Lots are owned by the book that replayed them; callers
// only ever see copies.
type Lot struct {
	Ticker          string
	AcquisitionDate Date
	Remaining       Quantity
	Original        Quantity // quantity the lot was created with
	UnitCost        Money    // fiscal cost per unit, commission-inclusive
	TransactionID   string   // originating Buy or TransferIn
	Transferred     bool     // true when the lot entered through a transfer-in
}

// CostBasis returns the fiscal cost of the remaining units.
func (l Lot) CostBasis() Money { return l.UnitCost.Mul(l.Remaining) }

// DaysHeld returns the holding period of the lot as of a date.
func (l Lot) DaysHeld(on Date) int { return l.AcquisitionDate.DaysUntil(on) }

// LotQueue holds the open lots of one ticker in acquisition order. Replay
// feeds it chronologically, so slice order is both the FIFO order and the
// insertion-order tie-break for identical acquisition dates.
type LotQueue struct {
	ticker string
	lots   []*Lot
}

func newLotQueue(ticker string) *LotQueue {
	return &LotQueue{ticker: ticker}
}

// Ticker returns the security the queue belongs to.
func (q *LotQueue) Ticker() string { return q.ticker }

// TotalQuantity returns the sum of the remaining quantities of all open lots.
func (q *LotQueue) TotalQuantity() Quantity {
	var total Quantity
	for _, l := range q.lots {
		total = total.Add(l.Remaining)
	}
	return total
}

// TotalCost returns the fiscal cost basis of all open lots.
func (q *LotQueue) TotalCost() Money {
	var total Money
	for _, l := range q.lots {
		total = total.Add(l.CostBasis())
	}
	return total
}

// Open returns copies of the open lots in acquisition order.
func (q *LotQueue) Open() []Lot {
	open := make([]Lot, 0, len(q.lots))
	for _, l := range q.lots {
		open = append(open, *l)
	}
	return open
}

// Clone returns a deep copy of the queue, for simulations that must not
// touch the replayed state.
func (q *LotQueue) Clone() *LotQueue {
	clone := newLotQueue(q.ticker)
	clone.lots = make([]*Lot, 0, len(q.lots))
	for _, l := range q.lots {
		c := *l
		clone.lots = append(clone.lots, &c)
	}
	return clone
}

// acquire appends a new lot at the end of the queue.
func (q *LotQueue) acquire(l Lot) {
	q.lots = append(q.lots, &l)
}

// compact drops lots whose remaining quantity rounds to zero.
func (q *LotQueue) compact() {
	kept := q.lots[:0]
	for _, l := range q.lots {
		if !l.Remaining.IsDust() {
			kept = append(kept, l)
		}
	}
	q.lots = kept
}

// dispose consumes qty from the queue under the given method and returns one
// SaleRecord per consumed lot. netProceeds (already commission-adjusted) is
// apportioned to the records in proportion to the consumed quantity, the
// last record absorbing any decimal remainder.
//
// A qty exceeding the open quantity fails with *InsufficientLotsError and
// leaves the queue untouched.
func (q *LotQueue) dispose(on Date, qty Quantity, netProceeds Money, method Method) ([]SaleRecord, error) {
	available := q.TotalQuantity()
	if available.LessThan(qty) {
		return nil, &InsufficientLotsError{Ticker: q.ticker, On: on, Requested: qty, Available: available}
	}

	order := q.lots
	if method == LIFO {
		order = make([]*Lot, len(q.lots))
		for i, l := range q.lots {
			order[len(q.lots)-1-i] = l
		}
	}

	var records []SaleRecord
	remaining := qty
	for _, l := range order {
		if remaining.IsZero() {
			break
		}
		if !l.Remaining.IsPositive() {
			continue
		}
		consumed := l.Remaining.Min(remaining)
		cost := l.UnitCost.Mul(consumed)
		proceeds := netProceeds.Mul(consumed).Div(qty)

		records = append(records, SaleRecord{
			SaleDate:      on,
			Ticker:        q.ticker,
			Quantity:      consumed,
			Proceeds:      proceeds,
			CostBasis:     cost,
			Gain:          gainOn(proceeds, cost),
			Currency:      netProceeds.Currency(),
			LotDate:       l.AcquisitionDate,
			DaysHeld:      l.DaysHeld(on),
			LotID:         l.TransactionID,
		})

		l.Remaining = l.Remaining.Sub(consumed)
		remaining = remaining.Sub(consumed)
	}

	// Hand the proceeds remainder to the last record so the records always
	// sum to exactly netProceeds.
	if n := len(records); n > 0 {
		var sum Money
		for _, r := range records[:n-1] {
			sum = sum.Add(r.Proceeds)
		}
		last := &records[n-1]
		last.Proceeds = netProceeds.Sub(sum)
		last.Gain = gainOn(last.Proceeds, last.CostBasis)
	}

	q.compact()
	return records, nil
}

// transferOut reduces every open lot's quantity (and therefore its cost)
// proportionally by qty / total. Transfers never select specific lots.
func (q *LotQueue) transferOut(on Date, qty Quantity) error {
	total := q.TotalQuantity()
	if total.LessThan(qty) {
		return &InsufficientLotsError{Ticker: q.ticker, On: on, Requested: qty, Available: total}
	}
	keep := total.Sub(qty).Div(total)
	for _, l := range q.lots {
		l.Remaining = l.Remaining.Mul(keep).Round()
	}
	q.compact()
	return nil
}
