package fiscal

import (
	"errors"
	"testing"
)

// queueWith builds a lot queue holding the canonical two-lot fixture:
// 100 units at 10 and 50 units at 12, acquired a month apart.
func queueWith(t *testing.T) *LotQueue {
	t.Helper()
	q := newLotQueue("FUND")
	q.acquire(Lot{
		Ticker:          "FUND",
		AcquisitionDate: MustDate("2025-01-10"),
		Remaining:       Q(100),
		Original:        Q(100),
		UnitCost:        EUR(10),
		TransactionID:   "a",
	})
	q.acquire(Lot{
		Ticker:          "FUND",
		AcquisitionDate: MustDate("2025-02-10"),
		Remaining:       Q(50),
		Original:        Q(50),
		UnitCost:        EUR(12),
		TransactionID:   "b",
	})
	return q
}

func TestDisposeFIFO(t *testing.T) {
	q := queueWith(t)

	// Selling 120 consumes all of the first lot and 20 of the second.
	records, err := q.dispose(MustDate("2025-06-01"), Q(120), EUR(1800), FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if !records[0].Quantity.Equal(Q(100)) || !records[0].CostBasis.Equal(EUR(1000)) {
		t.Errorf("first record = %s at %s, want 100 at €1000", records[0].Quantity, records[0].CostBasis)
	}
	if !records[1].Quantity.Equal(Q(20)) || !records[1].CostBasis.Equal(EUR(240)) {
		t.Errorf("second record = %s at %s, want 20 at €240", records[1].Quantity, records[1].CostBasis)
	}

	var cost Money
	for _, r := range records {
		cost = cost.Add(r.CostBasis)
	}
	if !cost.Equal(EUR(1240)) {
		t.Errorf("total cost basis = %s, want €1240", cost)
	}

	// 30 units remain, all in the second lot.
	if got := q.TotalQuantity(); !got.Equal(Q(30)) {
		t.Errorf("remaining = %s, want 30", got)
	}
	open := q.Open()
	if len(open) != 1 || open[0].TransactionID != "b" {
		t.Fatalf("open lots = %v, want only lot b", open)
	}
}

func TestDisposeLIFO(t *testing.T) {
	q := queueWith(t)

	records, err := q.dispose(MustDate("2025-06-01"), Q(120), EUR(1800), LIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// The newest lot goes first: 50 at 12, then 70 at 10.
	if !records[0].Quantity.Equal(Q(50)) || !records[0].CostBasis.Equal(EUR(600)) {
		t.Errorf("first record = %s at %s, want 50 at €600", records[0].Quantity, records[0].CostBasis)
	}
	if !records[1].Quantity.Equal(Q(70)) || !records[1].CostBasis.Equal(EUR(700)) {
		t.Errorf("second record = %s at %s, want 70 at €700", records[1].Quantity, records[1].CostBasis)
	}

	open := q.Open()
	if len(open) != 1 || open[0].TransactionID != "a" {
		t.Fatalf("open lots should keep only lot a, got %v", open)
	}
	if !open[0].Remaining.Equal(Q(30)) {
		t.Errorf("lot a remaining = %s, want 30", open[0].Remaining)
	}
}

// sameDayQueue builds a queue whose two lots share one acquisition date, so
// only insertion order can break the tie.
func sameDayQueue(t *testing.T) *LotQueue {
	t.Helper()
	q := newLotQueue("FUND")
	q.acquire(Lot{
		Ticker:          "FUND",
		AcquisitionDate: MustDate("2025-01-10"),
		Remaining:       Q(100),
		Original:        Q(100),
		UnitCost:        EUR(10),
		TransactionID:   "a",
	})
	q.acquire(Lot{
		Ticker:          "FUND",
		AcquisitionDate: MustDate("2025-01-10"),
		Remaining:       Q(50),
		Original:        Q(50),
		UnitCost:        EUR(12),
		TransactionID:   "b",
	})
	return q
}

func TestDisposeSameDateFIFOInsertionOrder(t *testing.T) {
	q := sameDayQueue(t)

	// Equal acquisition dates fall back to insertion order: lot a first.
	records, err := q.dispose(MustDate("2025-06-01"), Q(120), EUR(1800), FIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].LotID != "a" || !records[0].Quantity.Equal(Q(100)) {
		t.Errorf("first record consumed %s of lot %s, want 100 of a", records[0].Quantity, records[0].LotID)
	}
	if records[1].LotID != "b" || !records[1].Quantity.Equal(Q(20)) {
		t.Errorf("second record consumed %s of lot %s, want 20 of b", records[1].Quantity, records[1].LotID)
	}
}

func TestDisposeSameDateLIFOInsertionOrder(t *testing.T) {
	q := sameDayQueue(t)

	// LIFO mirrors the tie: the later-inserted lot b goes first.
	records, err := q.dispose(MustDate("2025-06-01"), Q(60), EUR(900), LIFO)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].LotID != "b" || !records[0].Quantity.Equal(Q(50)) {
		t.Errorf("first record consumed %s of lot %s, want 50 of b", records[0].Quantity, records[0].LotID)
	}
	if records[1].LotID != "a" || !records[1].Quantity.Equal(Q(10)) {
		t.Errorf("second record consumed %s of lot %s, want 10 of a", records[1].Quantity, records[1].LotID)
	}
}

func TestDisposeProceedsSumExactly(t *testing.T) {
	q := queueWith(t)

	// 1000/3 does not have a finite decimal expansion per unit; the records
	// must still sum to exactly the net proceeds.
	proceeds := EUR(1000).Div(Q(3))
	records, err := q.dispose(MustDate("2025-06-01"), Q(120), proceeds, FIFO)
	if err != nil {
		t.Fatal(err)
	}
	var sum Money
	for _, r := range records {
		sum = sum.Add(r.Proceeds)
	}
	if !sum.Equal(proceeds) {
		t.Errorf("proceeds sum = %s, want exactly %s", sum.Decimal(), proceeds.Decimal())
	}
}

func TestDisposeInsufficient(t *testing.T) {
	q := queueWith(t)

	_, err := q.dispose(MustDate("2025-06-01"), Q(200), EUR(3000), FIFO)
	var insufficient *InsufficientLotsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want *InsufficientLotsError", err)
	}
	if !insufficient.Requested.Equal(Q(200)) || !insufficient.Available.Equal(Q(150)) {
		t.Errorf("error reports %s of %s, want 200 of 150", insufficient.Requested, insufficient.Available)
	}
	// The queue is untouched after a rejected disposal.
	if got := q.TotalQuantity(); !got.Equal(Q(150)) {
		t.Errorf("remaining = %s, want 150", got)
	}
}

func TestTransferOutProportional(t *testing.T) {
	q := queueWith(t)

	// Transferring 75 of 150 halves every lot.
	if err := q.transferOut(MustDate("2025-06-01"), Q(75)); err != nil {
		t.Fatal(err)
	}
	open := q.Open()
	if len(open) != 2 {
		t.Fatalf("got %d open lots, want 2", len(open))
	}
	if !open[0].Remaining.Equal(Q(50)) {
		t.Errorf("lot a remaining = %s, want 50", open[0].Remaining)
	}
	if !open[1].Remaining.Equal(Q(25)) {
		t.Errorf("lot b remaining = %s, want 25", open[1].Remaining)
	}
	// The cost leaves with the units: half of 1000 + 600.
	if got := q.TotalCost(); !got.Equal(EUR(800)) {
		t.Errorf("total cost = %s, want €800", got)
	}
}

func TestTransferOutAll(t *testing.T) {
	q := queueWith(t)

	if err := q.transferOut(MustDate("2025-06-01"), Q(150)); err != nil {
		t.Fatal(err)
	}
	if got := q.Open(); len(got) != 0 {
		t.Errorf("got %d open lots, want none", len(got))
	}
}

func TestTransferOutInsufficient(t *testing.T) {
	q := queueWith(t)

	err := q.transferOut(MustDate("2025-06-01"), Q(151))
	var insufficient *InsufficientLotsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want *InsufficientLotsError", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	q := queueWith(t)
	clone := q.Clone()

	if _, err := clone.dispose(MustDate("2025-06-01"), Q(150), EUR(2000), FIFO); err != nil {
		t.Fatal(err)
	}
	if got := q.TotalQuantity(); !got.Equal(Q(150)) {
		t.Errorf("disposing from the clone changed the original: remaining = %s", got)
	}
}
