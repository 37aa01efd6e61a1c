package fiscal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Numbers are stored as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// txRecord is the flat on-disk shape of any transaction, one JSON object per
// line. Fields a command does not use are omitted.
type txRecord struct {
	ID         string              `json:"id"`
	Command    Kind                `json:"command"`
	Date       Date                `json:"date"`
	Ticker     string              `json:"ticker"`
	Name       string              `json:"name,omitempty"`
	Quantity   Quantity            `json:"quantity"`
	Price      decimal.Decimal     `json:"price"`
	Commission decimal.Decimal     `json:"commission,omitempty"`
	Currency   string              `json:"currency,omitempty"`
	CostBasis  decimal.Decimal     `json:"costBasis,omitempty"`
	Gain       decimal.NullDecimal `json:"gain,omitempty"`
}

// record flattens a transaction into its storage shape.
func record(tx Transaction) (txRecord, error) {
	switch v := tx.(type) {
	case Buy:
		return txRecord{
			ID: v.TxID, Command: v.Command, Date: v.Date, Ticker: v.Security, Name: v.Name,
			Quantity: v.Quantity, Price: v.Price.Decimal(), Commission: v.Commission.Decimal(),
			Currency: v.Currency(),
		}, nil
	case Sell:
		return txRecord{
			ID: v.TxID, Command: v.Command, Date: v.Date, Ticker: v.Security, Name: v.Name,
			Quantity: v.Quantity, Price: v.Price.Decimal(), Commission: v.Commission.Decimal(),
			Currency: v.Currency(), Gain: v.GainOverride,
		}, nil
	case TransferIn:
		return txRecord{
			ID: v.TxID, Command: v.Command, Date: v.Date, Ticker: v.Security, Name: v.Name,
			Quantity: v.Quantity, Price: v.Price.Decimal(), Currency: v.Currency(),
			CostBasis: v.CostBasis.Decimal(),
		}, nil
	case TransferOut:
		return txRecord{
			ID: v.TxID, Command: v.Command, Date: v.Date, Ticker: v.Security, Name: v.Name,
			Quantity: v.Quantity, Price: v.Price.Decimal(), Currency: v.Price.Currency(),
		}, nil
	default:
		return txRecord{}, invalidf("unknown transaction kind %q", tx.What())
	}
}

// transaction rebuilds a transaction from its storage shape, keeping the
// stored id.
func (r txRecord) transaction() (Transaction, error) {
	currency := r.Currency
	if currency == "" {
		currency = "EUR"
	}
	base := baseTx{TxID: r.ID, Command: r.Command, Date: r.Date, Security: r.Ticker, Name: r.Name}
	trade := tradeTx{
		baseTx:     base,
		Quantity:   r.Quantity,
		Price:      M(r.Price, currency),
		Commission: M(r.Commission, currency),
	}
	switch r.Command {
	case KindBuy:
		return Buy{trade}, nil
	case KindSell:
		return Sell{tradeTx: trade, GainOverride: r.Gain}, nil
	case KindTransferIn:
		return TransferIn{tradeTx: trade, CostBasis: M(r.CostBasis, currency)}, nil
	case KindTransferOut:
		return TransferOut{baseTx: base, Quantity: r.Quantity, Price: M(r.Price, currency)}, nil
	default:
		return nil, invalidf("unknown transaction kind %q", r.Command)
	}
}

// EncodeLedger writes the ledger as JSONL, one transaction per line, in
// chronological order. The output is the canonical storage format: decoding
// it and encoding again is the identity.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	enc := json.NewEncoder(w)
	for _, tx := range ledger.Transactions() {
		r, err := record(tx)
		if err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("could not encode transaction %s: %w", tx.ID(), err)
		}
	}
	return nil
}

// DecodeLedger reads a JSONL transaction stream into a ledger. Blank lines
// are skipped; any invalid line aborts with the line number in the error.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scan.Scan() {
		line++
		text := strings.TrimSpace(scan.Text())
		if text == "" {
			continue
		}
		var rec txRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: could not parse transaction: %w", line, err)
		}
		tx, err := rec.transaction()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := ledger.Append(tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	return ledger, nil
}
