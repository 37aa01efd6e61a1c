package fiscal

import "github.com/shopspring/decimal"

// shortTermDays is the holding period under which a disposal counts as
// short-term in reports.
const shortTermDays = 365

// SaleRecord is the result of matching one disposal against one lot. A sell
// spanning several lots yields several records sharing the same sale date
// and ticker. Records are created once and never mutated afterwards, except
// for the advisory WashSale flag set by the detector.
type SaleRecord struct {
	SaleDate  Date
	Ticker    string
	Quantity  Quantity
	Proceeds  Money // commission-adjusted share of the sale proceeds
	CostBasis Money // fiscal cost consumed from the lot
	Gain      Money // Proceeds - CostBasis, unless overridden
	Currency  string
	WashSale  bool // advisory two-month-rule flag, never enforced on totals

	LotDate  Date   // acquisition date of the consumed lot
	DaysHeld int    // holding period of the consumed lot at the sale date
	LotID    string // id of the originating Buy or TransferIn
}

// ShortTerm reports whether the consumed lot was held less than a year.
func (r SaleRecord) ShortTerm() bool { return r.DaysHeld < shortTermDays }

// gainOn returns proceeds minus cost. A sale may be denominated in another
// currency than the acquisition that feeds it; the ledger carries no
// exchange rates, so the subtraction then happens on raw decimals and the
// unconverted figure is tagged with the sale currency. Recording a gain
// override on the sell replaces it with the converted amount.
func gainOn(proceeds, cost Money) Money {
	if proceeds.Currency() == cost.Currency() || proceeds.Currency() == "" || cost.Currency() == "" {
		return proceeds.Sub(cost)
	}
	return M(proceeds.Decimal().Sub(cost.Decimal()), proceeds.Currency())
}

// overrideGains replaces the computed gains of a sell's records with a
// pre-converted accounting-currency gain, apportioned by consumed quantity.
// The last record absorbs the decimal remainder so the records sum exactly
// to the override. Cost basis is back-derived for reporting only.
func overrideGains(records []SaleRecord, override decimal.Decimal, currency string) {
	if len(records) == 0 {
		return
	}
	var total Quantity
	for _, r := range records {
		total = total.Add(r.Quantity)
	}
	assigned := decimal.Zero
	for i := range records {
		r := &records[i]
		gain := override.Mul(r.Quantity.Decimal()).Div(total.Decimal())
		if i == len(records)-1 {
			gain = override.Sub(assigned)
		}
		assigned = assigned.Add(gain)
		r.Gain = M(gain, currency)
		r.Currency = currency
		// Back-derived on raw values: proceeds may be denominated in the
		// sale currency while the override is already accounting-currency.
		r.CostBasis = M(r.Proceeds.Decimal().Sub(gain), currency)
	}
}
