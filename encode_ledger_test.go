package fiscal

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerRoundTrip(t *testing.T) {
	ledger := NewLedger()
	sell := NewSell(MustDate("2025-06-01"), "USFUND", "", Q(10), M(150, "USD"), M(1, "USD")).
		WithGainOverride(decimal.NewFromFloat(-143.28))
	if err := ledger.Append(
		NewBuy(MustDate("2025-01-10"), "FUND", "Fondo Indexado", Q(decimal.NewFromFloat(100.123456)), EUR(10.5), EUR(2)),
		NewTransferIn(MustDate("2025-02-10"), "FUND", "", Q(50), EUR(12), EUR(550)),
		NewTransferOut(MustDate("2025-03-10"), "FUND", "", Q(25), EUR(13)),
		sell,
	); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := EncodeLedger(&b, ledger); err != nil {
		t.Fatal(err)
	}
	back, err := DecodeLedger(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}

	if back.Len() != ledger.Len() {
		t.Fatalf("decoded %d transactions, want %d", back.Len(), ledger.Len())
	}
	for i, tx := range ledger.Transactions() {
		var got Transaction
		for j, btx := range back.Transactions() {
			if j == i {
				got = btx
				break
			}
		}
		if !tx.Equal(got) {
			t.Errorf("transaction %d does not round trip:\n  in:  %#v\n  out: %#v", i, tx, got)
		}
	}

	// Canonical form: encoding the decoded ledger is the identity.
	var again strings.Builder
	if err := EncodeLedger(&again, back); err != nil {
		t.Fatal(err)
	}
	if again.String() != b.String() {
		t.Errorf("encode is not canonical:\n%s\nvs\n%s", b.String(), again.String())
	}
}

func TestDecodeLedgerSkipsBlankLines(t *testing.T) {
	input := `
{"id":"x1","command":"buy","date":"2025-01-10","ticker":"FUND","quantity":100,"price":10,"currency":"EUR"}

{"id":"x2","command":"sell","date":"2025-06-01","ticker":"FUND","quantity":50,"price":12,"currency":"EUR"}
`
	ledger, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Len() != 2 {
		t.Errorf("got %d transactions, want 2", ledger.Len())
	}
}

func TestDecodeLedgerReportsLine(t *testing.T) {
	input := `{"id":"x1","command":"buy","date":"2025-01-10","ticker":"FUND","quantity":100,"price":10}
{"id":"x2","command":"teleport","date":"2025-02-10","ticker":"FUND","quantity":1,"price":1}`
	_, err := DecodeLedger(strings.NewReader(input))
	if err == nil {
		t.Fatal("unknown command should not decode")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}

func TestDecodeLedgerSortsByDate(t *testing.T) {
	// Stored out of order, decoded in chronological order.
	input := `{"id":"x2","command":"sell","date":"2025-06-01","ticker":"FUND","quantity":50,"price":12}
{"id":"x1","command":"buy","date":"2025-01-10","ticker":"FUND","quantity":100,"price":10}`
	ledger, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := ledger.OldestTransactionDate(); got != MustDate("2025-01-10") {
		t.Errorf("oldest = %s, want 2025-01-10", got)
	}
	if _, err := NewBook(ledger, MustDate("2025-12-31"), FIFO); err != nil {
		t.Errorf("the reordered ledger should replay, got %v", err)
	}
}
