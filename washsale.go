package fiscal

// washSaleMonths is half the width of the anti-application window: a loss is
// flagged when the same ticker was bought within two months on either side
// of the sale.
const washSaleMonths = 2

// InWashSaleWindow reports whether a buy date falls in the inclusive
// [sale - 2 months, sale + 2 months] window, the sale date itself excluded.
func InWashSaleWindow(sale, buy Date) bool {
	if buy == sale {
		return false
	}
	return !buy.Before(sale.AddMonth(-washSaleMonths)) && !buy.After(sale.AddMonth(washSaleMonths))
}

// flagWashSales sets the advisory WashSale flag on every loss record whose
// ticker was repurchased inside the two-month window around its sale date.
//
// Matching is by ticker string equality only: two share classes of the same
// fund are not recognized as the same security. This mirrors the behavior
// the reports have always documented.
//
// The flag never removes the loss from any total; deciding what to do with
// a non-deductible loss is the caller's business.
func flagWashSales(records []SaleRecord, ledger *Ledger) {
	for i := range records {
		r := &records[i]
		if !r.Gain.IsNegative() {
			continue
		}
		for buy := range ledger.Buys(r.Ticker) {
			if InWashSaleWindow(r.SaleDate, buy.Date) {
				r.WashSale = true
				break
			}
		}
	}
}
