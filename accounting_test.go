package fiscal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestAccounting(t *testing.T, txs ...Transaction) *Accounting {
	t.Helper()
	ledger := NewLedger()
	if err := ledger.Append(txs...); err != nil {
		t.Fatal(err)
	}
	accounting, err := NewAccounting(ledger, nil, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	return accounting
}

func TestPositions(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2025-01-10"), "FUND", "Fondo Indexado", Q(100), EUR(10), EUR(0)),
		NewBuy(MustDate("2025-02-10"), "FUND", "", Q(50), EUR(12), EUR(0)),
		NewBuy(MustDate("2025-02-10"), "ETF", "", Q(10), EUR(100), EUR(0)),
		NewSell(MustDate("2025-03-01"), "ETF", "", Q(10), EUR(110), EUR(0)),
	)

	positions, err := accounting.Positions(map[string]Money{"FUND": EUR(11)})
	if err != nil {
		t.Fatal(err)
	}
	// ETF is fully sold and must not appear.
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	p := positions[0]
	if p.Ticker != "FUND" || p.Name != "Fondo Indexado" {
		t.Errorf("position = %s (%s), want FUND (Fondo Indexado)", p.Ticker, p.Name)
	}
	if !p.Quantity.Equal(Q(150)) || !p.CostBasis.Equal(EUR(1600)) {
		t.Errorf("quantity %s cost %s, want 150 and €1600", p.Quantity, p.CostBasis)
	}
	if !p.MarketValue.Equal(EUR(1650)) || !p.UnrealizedGain.Equal(EUR(50)) {
		t.Errorf("market %s unrealized %s, want €1650 and €50", p.MarketValue, p.UnrealizedGain)
	}
}

func TestFiscalYearSummary(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2024-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
		NewBuy(MustDate("2024-01-10"), "ETF", "", Q(100), EUR(10), EUR(0)),
		// Q1 gain of 500.
		NewSell(MustDate("2025-02-01"), "FUND", "", Q(50), EUR(20), EUR(0)),
		// Q3 loss of 200.
		NewSell(MustDate("2025-08-01"), "ETF", "", Q(50), EUR(6), EUR(0)),
		// A sale in another year stays out.
		NewSell(MustDate("2024-06-01"), "FUND", "", Q(10), EUR(30), EUR(0)),
	)

	s, err := accounting.FiscalYearSummary(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if s.Sales != 2 {
		t.Fatalf("got %d sales, want 2", s.Sales)
	}
	if !s.TotalGains.Equal(EUR(500)) {
		t.Errorf("gains = %s, want €500", s.TotalGains)
	}
	// Losses are reported as a positive magnitude.
	if !s.TotalLosses.Equal(EUR(200)) {
		t.Errorf("losses = %s, want €200", s.TotalLosses)
	}
	if !s.NetGain.Equal(EUR(300)) {
		t.Errorf("net = %s, want €300", s.NetGain)
	}
	if !s.TaxBase.Equal(EUR(300)) {
		t.Errorf("tax base = %s, want €300", s.TaxBase)
	}
	// 300 * 0.19
	if !s.EstimatedTax.Equal(EUR(57)) {
		t.Errorf("estimated tax = %s, want €57", s.EstimatedTax)
	}
	if !s.ByQuarter[0].Equal(EUR(500)) || !s.ByQuarter[2].Equal(EUR(-200)) {
		t.Errorf("quarters = %v, want +500 in Q1 and -200 in Q3", s.ByQuarter)
	}
	if !s.ByQuarter[1].IsZero() || !s.ByQuarter[3].IsZero() {
		t.Errorf("quarters = %v, want Q2 and Q4 empty", s.ByQuarter)
	}
}

func TestFiscalYearSummaryNetLoss(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2024-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
		NewSell(MustDate("2025-02-01"), "FUND", "", Q(50), EUR(4), EUR(0)),
	)
	s, err := accounting.FiscalYearSummary(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if !s.NetGain.Equal(EUR(-300)) {
		t.Errorf("net = %s, want -€300", s.NetGain)
	}
	// A net loss owes nothing; the base never goes negative.
	if !s.TaxBase.IsZero() || !s.EstimatedTax.IsZero() {
		t.Errorf("base %s tax %s, want both zero", s.TaxBase, s.EstimatedTax)
	}
	if len(s.Breakdown) != 0 {
		t.Errorf("got %d breakdown shares on a zero base, want none", len(s.Breakdown))
	}
}

func TestFiscalYearSummaryWashSaleIsInformational(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2024-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
		NewBuy(MustDate("2024-01-10"), "ETF", "", Q(100), EUR(10), EUR(0)),
		NewSell(MustDate("2025-02-01"), "ETF", "", Q(100), EUR(20), EUR(0)),
		// Loss with a repurchase ten days later.
		NewSell(MustDate("2025-03-01"), "FUND", "", Q(50), EUR(6), EUR(0)),
		NewBuy(MustDate("2025-03-11"), "FUND", "", Q(50), EUR(6), EUR(0)),
	)
	s, err := accounting.FiscalYearSummary(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if !s.WashSaleLoss.Equal(EUR(200)) {
		t.Errorf("wash-sale loss = %s, want €200", s.WashSaleLoss)
	}
	if !s.DeductibleLoss.IsZero() {
		t.Errorf("deductible loss = %s, want zero", s.DeductibleLoss)
	}
	// The flag never alters the totals: net stays 1000 - 200.
	if !s.NetGain.Equal(EUR(800)) {
		t.Errorf("net = %s, want €800", s.NetGain)
	}
	if !s.TaxBase.Equal(EUR(800)) {
		t.Errorf("tax base = %s, want €800", s.TaxBase)
	}

	flagged, err := accounting.WashSales(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(flagged) != 1 || flagged[0].Ticker != "FUND" {
		t.Fatalf("flagged = %v, want the FUND loss only", flagged)
	}
}

func TestFiscalYearDetailOrder(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2024-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
		NewSell(MustDate("2025-02-01"), "FUND", "", Q(10), EUR(20), EUR(0)),
		NewSell(MustDate("2025-08-01"), "FUND", "", Q(10), EUR(20), EUR(0)),
	)
	records, err := accounting.FiscalYearDetail(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest sale first.
	if records[0].SaleDate != MustDate("2025-08-01") {
		t.Errorf("first record is %s, want the August sale", records[0].SaleDate)
	}
	if records[0].DaysHeld <= 365 || records[0].ShortTerm() {
		t.Errorf("the August sale held %d days should not be short-term", records[0].DaysHeld)
	}
}

func TestSimulateSale(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2020-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
	)

	sim, err := accounting.SimulateSale("FUND", Q(50), EUR(20), FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if sim.Insufficient {
		t.Fatal("50 of 100 should not be insufficient")
	}
	if !sim.Gain.Equal(EUR(500)) {
		t.Errorf("gain = %s, want €500", sim.Gain)
	}
	// 500 * 0.19
	if !sim.EstimatedTax.Equal(EUR(95)) {
		t.Errorf("tax = %s, want €95", sim.EstimatedTax)
	}
	if !sim.NetAfterTax.Equal(EUR(405)) {
		t.Errorf("net after tax = %s, want €405", sim.NetAfterTax)
	}
	if sim.ShortTerm {
		t.Error("a lot held since 2020 is not short-term")
	}

	// The simulation never touches the book.
	lots, err := accounting.AvailableLots("FUND", FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(lots) != 1 || !lots[0].Remaining.Equal(Q(100)) {
		t.Errorf("lots after simulation = %v, want the untouched 100", lots)
	}
}

func TestSimulateSaleInsufficient(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2020-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
	)
	sim, err := accounting.SimulateSale("FUND", Q(200), EUR(20), FIFO)
	if err != nil {
		t.Fatal(err)
	}
	// Over-quantity is an explicit result, not an error.
	if !sim.Insufficient {
		t.Fatal("200 of 100 should be insufficient")
	}
	if !sim.Available.Equal(Q(100)) {
		t.Errorf("available = %s, want 100", sim.Available)
	}
}

func TestSimulateSaleInvalidInput(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2020-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
	)
	var invalid *InputValidationError

	if _, err := accounting.SimulateSale("FUND", Q(0), EUR(20), FIFO); !errors.As(err, &invalid) {
		t.Errorf("zero quantity: got %v, want *InputValidationError", err)
	}
	if _, err := accounting.SimulateSale("FUND", Q(-5), EUR(20), FIFO); !errors.As(err, &invalid) {
		t.Errorf("negative quantity: got %v, want *InputValidationError", err)
	}
	if _, err := accounting.SimulateSale("NOPE", Q(10), EUR(20), FIFO); !errors.As(err, &invalid) {
		t.Errorf("unknown ticker: got %v, want *InputValidationError", err)
	}
}

func TestValidateTransaction(t *testing.T) {
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2025-01-10"), "FUND", "", Q(100), EUR(10), EUR(0)),
	)

	if err := accounting.Validate(NewSell(MustDate("2025-02-01"), "FUND", "", Q(50), EUR(11), EUR(0))); err != nil {
		t.Errorf("selling 50 of 100 should validate, got %v", err)
	}

	var insufficient *InsufficientLotsError
	err := accounting.Validate(NewSell(MustDate("2025-02-01"), "FUND", "", Q(200), EUR(11), EUR(0)))
	if !errors.As(err, &insufficient) {
		t.Errorf("selling 200 of 100: got %v, want *InsufficientLotsError", err)
	}

	// A disposal dated before the acquisition has nothing to consume.
	err = accounting.Validate(NewSell(MustDate("2024-12-01"), "FUND", "", Q(10), EUR(11), EUR(0)))
	if !errors.As(err, &insufficient) {
		t.Errorf("selling before the buy: got %v, want *InsufficientLotsError", err)
	}

	var invalid *InputValidationError
	err = accounting.Validate(NewSell(MustDate("2025-02-01"), "", "", Q(10), EUR(11), EUR(0)))
	if !errors.As(err, &invalid) {
		t.Errorf("missing ticker: got %v, want *InputValidationError", err)
	}
}

func TestGainOverridePrecedence(t *testing.T) {
	sell := NewSell(MustDate("2025-06-01"), "USFUND", "", Q(10), M(150, "USD"), M(0, "USD")).
		WithGainOverride(decimal.NewFromFloat(-143.28))
	accounting := newTestAccounting(t,
		NewBuy(MustDate("2024-01-10"), "USFUND", "", Q(10), M(160, "USD"), M(0, "USD")),
		sell,
	)
	s, err := accounting.FiscalYearSummary(2025, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	want := M(decimal.NewFromFloat(-143.28), "EUR")
	if !s.NetGain.Equal(want) {
		t.Errorf("net = %s, want %s", s.NetGain, want)
	}
	if !s.TotalLosses.Equal(want.Neg()) {
		t.Errorf("losses = %s, want %s", s.TotalLosses, want.Neg())
	}
}
