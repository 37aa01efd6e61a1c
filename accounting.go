package fiscal

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Accounting binds a ledger to a tax bracket table and a reporting currency.
// It is the entry point for every fiscal query.
//
// Every query replays the ledger from scratch: there is no cached state to
// invalidate, and identical inputs always produce identical answers. Callers
// wanting caching must key it on the full input themselves.
type Accounting struct {
	ledger   *Ledger
	brackets BracketTable
	cur      string // reporting currency
}

// NewAccounting creates an accounting view over a ledger. A nil brackets
// table defaults to the Spanish savings-income table; an empty currency
// defaults to EUR.
func NewAccounting(ledger *Ledger, brackets BracketTable, currency string) (*Accounting, error) {
	if brackets == nil {
		brackets = SpanishSavingsBrackets()
	}
	if err := brackets.Validate(); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "EUR"
	}
	return &Accounting{ledger: ledger, brackets: brackets, cur: currency}, nil
}

// Ledger returns the underlying ledger.
func (a *Accounting) Ledger() *Ledger { return a.ledger }

// Brackets returns the tax table in force.
func (a *Accounting) Brackets() BracketTable { return a.brackets }

// Currency returns the reporting currency.
func (a *Accounting) Currency() string { return a.cur }

// book replays the whole ledger with the given method.
func (a *Accounting) book(method Method) (*Book, error) {
	return newBookIn(a.ledger, a.ledger.NewestTransactionDate(), method, a.cur)
}

// Position is the displayable aggregate of one ticker's open lots.
type Position struct {
	Ticker         string
	Name           string
	Quantity       Quantity
	AvgCost        Money // cost basis divided by quantity
	CostBasis      Money
	MarketValue    Money // zero unless a price was supplied
	UnrealizedGain Money // zero unless a price was supplied
}

// Positions aggregates the open lots of every ticker as of the last
// transaction. Aggregate positions do not depend on the matching method,
// only per-lot detail does, so FIFO replay serves both. The optional prices
// map adds market value and unrealized gain to each position.
func (a *Accounting) Positions(prices map[string]Money) ([]Position, error) {
	book, err := a.book(FIFO)
	if err != nil {
		return nil, err
	}
	var positions []Position
	for _, ticker := range book.Tickers() {
		q := book.Queue(ticker)
		quantity := q.TotalQuantity()
		if quantity.IsDust() {
			continue
		}
		p := Position{
			Ticker:    ticker,
			Name:      a.ledger.Name(ticker),
			Quantity:  quantity,
			CostBasis: q.TotalCost(),
		}
		p.AvgCost = p.CostBasis.Div(quantity)
		if price, ok := prices[ticker]; ok {
			p.MarketValue = price.Mul(quantity)
			p.UnrealizedGain = gainOn(p.MarketValue, p.CostBasis)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// AvailableLots returns copies of the open lots of a ticker under the given
// method, in acquisition order. A ticker with no history yields nil.
func (a *Accounting) AvailableLots(ticker string, method Method) ([]Lot, error) {
	book, err := a.book(method)
	if err != nil {
		return nil, err
	}
	q := book.Queue(ticker)
	if q == nil {
		return nil, nil
	}
	return q.Open(), nil
}

// Warnings replays the ledger and returns the ambiguous-ordering warnings.
func (a *Accounting) Warnings() ([]AmbiguousOrderingWarning, error) {
	book, err := a.book(FIFO)
	if err != nil {
		return nil, err
	}
	return book.Warnings(), nil
}

// FiscalYearDetail returns every sale record of a calendar year under the
// given method, wash-sale flagged, newest sale first.
func (a *Accounting) FiscalYearDetail(year int, method Method) ([]SaleRecord, error) {
	book, err := a.book(method)
	if err != nil {
		return nil, err
	}
	var records []SaleRecord
	for _, r := range book.Sales() {
		if r.SaleDate.Year() == year {
			records = append(records, r)
		}
	}
	// Flag against the full ledger: the window reaches into the next year.
	flagWashSales(records, a.ledger)
	sort.SliceStable(records, func(i, j int) bool {
		return records[j].SaleDate.Before(records[i].SaleDate)
	})
	return records, nil
}

// WashSales returns the flagged subset of a year's sale records.
func (a *Accounting) WashSales(year int, method Method) ([]SaleRecord, error) {
	records, err := a.FiscalYearDetail(year, method)
	if err != nil {
		return nil, err
	}
	var flagged []SaleRecord
	for _, r := range records {
		if r.WashSale {
			flagged = append(flagged, r)
		}
	}
	return flagged, nil
}

// FiscalYearSummary is the derived yearly view handed to reports. It is
// recomputed on demand and never stored.
type FiscalYearSummary struct {
	Year     int
	Method   Method
	Currency string

	Sales       int   // number of sale records
	TotalGains  Money // sum of positive gains
	TotalLosses Money // sum of loss magnitudes, as a positive amount
	NetGain     Money // TotalGains - TotalLosses

	// WashSaleLoss is the informational total of flagged loss magnitudes;
	// DeductibleLoss is TotalLosses minus WashSaleLoss. Neither alters
	// NetGain or the tax base: the two-month rule is advisory here.
	WashSaleLoss   Money
	DeductibleLoss Money

	TaxBase      Money // max(NetGain, 0)
	EstimatedTax Money
	Breakdown    []BracketShare
	ByQuarter    [4]Money // net gain per calendar quarter
}

// FiscalYearSummary aggregates a year's sale records into the yearly fiscal
// summary, applying the bracket table to the positive net gain.
func (a *Accounting) FiscalYearSummary(year int, method Method) (*FiscalYearSummary, error) {
	records, err := a.FiscalYearDetail(year, method)
	if err != nil {
		return nil, err
	}

	s := &FiscalYearSummary{Year: year, Method: method, Currency: a.cur, Sales: len(records)}
	gains, losses, washLoss := decimal.Zero, decimal.Zero, decimal.Zero
	var quarters [4]decimal.Decimal
	for _, r := range records {
		g := r.Gain.Decimal()
		if g.IsPositive() {
			gains = gains.Add(g)
		} else {
			losses = losses.Add(g.Neg())
			if r.WashSale {
				washLoss = washLoss.Add(g.Neg())
			}
		}
		qi := r.SaleDate.Quarter() - 1
		quarters[qi] = quarters[qi].Add(g)
	}

	net := gains.Sub(losses)
	base := net
	if base.IsNegative() {
		base = decimal.Zero
	}

	s.TotalGains = M(gains, a.cur).Round()
	s.TotalLosses = M(losses, a.cur).Round()
	s.NetGain = M(net, a.cur).Round()
	s.WashSaleLoss = M(washLoss, a.cur).Round()
	s.DeductibleLoss = M(losses.Sub(washLoss), a.cur).Round()
	s.TaxBase = M(base, a.cur).Round()
	s.EstimatedTax = M(a.brackets.Tax(base), a.cur).Round()
	s.Breakdown = a.brackets.Breakdown(base)
	for i, q := range quarters {
		s.ByQuarter[i] = M(q, a.cur).Round()
	}
	return s, nil
}

// Simulation is the result of a hypothetical disposal. It never touches the
// replayed state.
type Simulation struct {
	Ticker   string
	Quantity Quantity
	Price    Money

	// Insufficient is true when the request exceeds the open quantity;
	// Available then reports what the book actually holds and the monetary
	// fields stay zero.
	Insufficient bool
	Available    Quantity

	Proceeds     Money
	CostBasis    Money
	Gain         Money
	EstimatedTax Money // tax if the gain were the whole year's base
	NetAfterTax  Money
	ShortTerm    bool // true when any consumed lot was held under a year
	WashSaleRisk bool // a buy already sits inside the two-month window
	Records      []SaleRecord
}

// SimulateSale runs a hypothetical disposal of a ticker against a snapshot
// of today's book. Over-quantity requests return an explicit insufficient
// result, not an error; a non-positive quantity, a negative price, or a
// ticker absent from the ledger is a caller bug and fails with
// *InputValidationError.
func (a *Accounting) SimulateSale(ticker string, quantity Quantity, price Money, method Method) (*Simulation, error) {
	if !quantity.IsPositive() {
		return nil, invalidf("simulated sale quantity must be positive, got %s", quantity)
	}
	if price.IsNegative() {
		return nil, invalidf("simulated sale price must not be negative, got %s", price)
	}
	book, err := a.book(method)
	if err != nil {
		return nil, err
	}
	q := book.Queue(ticker)
	if q == nil {
		return nil, invalidf("unknown ticker %q", ticker)
	}

	sim := &Simulation{Ticker: ticker, Quantity: quantity, Price: price}
	today := Today()

	snapshot := q.Clone()
	records, err := snapshot.dispose(today, quantity, price.Mul(quantity), method)
	if err != nil {
		var insufficient *InsufficientLotsError
		if errors.As(err, &insufficient) {
			sim.Insufficient = true
			sim.Available = insufficient.Available
			return sim, nil
		}
		return nil, err
	}

	for _, r := range records {
		sim.Proceeds = sim.Proceeds.Add(r.Proceeds)
		sim.CostBasis = sim.CostBasis.Add(r.CostBasis)
		sim.Gain = sim.Gain.Add(r.Gain)
		if r.ShortTerm() {
			sim.ShortTerm = true
		}
	}
	sim.Records = records

	if sim.Gain.IsPositive() {
		sim.EstimatedTax = M(a.brackets.Tax(sim.Gain.Decimal()), a.cur).Round()
	} else {
		sim.EstimatedTax = M(0, a.cur)
	}
	sim.NetAfterTax = M(sim.Gain.Decimal().Sub(sim.EstimatedTax.Decimal()), a.cur)

	for buy := range a.ledger.Buys(ticker) {
		if InWashSaleWindow(today, buy.Date) {
			sim.WashSaleRisk = true
			break
		}
	}
	return sim, nil
}

// Validate checks a transaction before it is recorded: field validation
// first, then a replay up to the transaction date to reject disposals that
// would exceed the open quantity.
func (a *Accounting) Validate(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	var disposal Quantity
	switch v := tx.(type) {
	case Sell:
		disposal = v.Quantity
	case TransferOut:
		disposal = v.Quantity
	default:
		return nil
	}
	book, err := NewBook(a.ledger, tx.When(), FIFO)
	if err != nil {
		return fmt.Errorf("could not replay ledger: %w", err)
	}
	available := book.Position(tx.Ticker())
	if available.LessThan(disposal) {
		return &InsufficientLotsError{Ticker: tx.Ticker(), On: tx.When(), Requested: disposal, Available: available}
	}
	return nil
}
