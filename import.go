package fiscal

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ImportMapping describes where a broker's JSON export keeps each transaction
// field, as jsonpath expressions relative to one exported row. Rows selects
// the list of rows inside the document.
//
// Brokers disagree on everything, field names included, so the mapping is
// data, not code: a new broker is a new mapping, not a new importer.
type ImportMapping struct {
	Rows       string `json:"rows"`
	Kind       string `json:"kind"`
	Date       string `json:"date"`
	Ticker     string `json:"ticker"`
	Name       string `json:"name,omitempty"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	Commission string `json:"commission,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Gain       string `json:"gain,omitempty"`      // broker-computed realized gain, accounting currency
	CostBasis  string `json:"costBasis,omitempty"` // inherited fiscal cost of a transfer-in
}

// DecodeImportMapping reads a JSON import mapping.
func DecodeImportMapping(r io.Reader) (*ImportMapping, error) {
	var m ImportMapping
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("could not decode import mapping: %w", err)
	}
	if m.Rows == "" || m.Kind == "" || m.Date == "" || m.Ticker == "" || m.Quantity == "" || m.Price == "" {
		return nil, invalidf("import mapping must set rows, kind, date, ticker, quantity and price paths")
	}
	return &m, nil
}

// Import parses a broker JSON export with the given mapping and returns the
// transactions it contains, ready to append to a ledger. Rows mapping to an
// unknown kind abort the import; a partial import is worse than none.
func Import(r io.Reader, mapping *ImportMapping) ([]Transaction, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse broker export: %w", err)
	}
	jrows, err := jsonpath.Get(mapping.Rows, doc)
	if err != nil {
		return nil, fmt.Errorf("rows path %q: %w", mapping.Rows, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		return nil, invalidf("rows path %q does not select a list", mapping.Rows)
	}

	var txs []Transaction
	for i, row := range rows {
		tx, err := importRow(row, mapping)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// importRow maps one exported row to a transaction.
func importRow(row any, m *ImportMapping) (Transaction, error) {
	kindText, err := pathString(row, m.Kind)
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(strings.ToLower(strings.TrimSpace(kindText)))
	if err != nil {
		return nil, err
	}

	dateText, err := pathString(row, m.Date)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(dateText)
	if err != nil {
		return nil, err
	}

	ticker, err := pathString(row, m.Ticker)
	if err != nil {
		return nil, err
	}
	name := ""
	if m.Name != "" {
		if name, err = pathString(row, m.Name); err != nil {
			return nil, err
		}
	}
	currency := "EUR"
	if m.Currency != "" {
		if currency, err = pathString(row, m.Currency); err != nil {
			return nil, err
		}
	}

	quantity, err := pathDecimal(row, m.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := pathDecimal(row, m.Price)
	if err != nil {
		return nil, err
	}
	commission := decimal.Zero
	if m.Commission != "" {
		if commission, err = pathDecimal(row, m.Commission); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindBuy:
		return NewBuy(day, ticker, name, Q(quantity), M(price, currency), M(commission, currency)), nil
	case KindSell:
		sell := NewSell(day, ticker, name, Q(quantity), M(price, currency), M(commission, currency))
		if m.Gain != "" {
			if jval, err := jsonpath.Get(m.Gain, row); err == nil && jval != nil {
				gain, err := toDecimal(jval)
				if err != nil {
					return nil, fmt.Errorf("path %q: %w", m.Gain, err)
				}
				sell = sell.WithGainOverride(gain)
			}
		}
		return sell, nil
	case KindTransferIn:
		// Without a mapped cost basis the transfer-day price stands in for
		// the inherited fiscal cost.
		basis := decimal.Zero
		if m.CostBasis != "" {
			if jval, err := jsonpath.Get(m.CostBasis, row); err == nil && jval != nil {
				if basis, err = toDecimal(jval); err != nil {
					return nil, fmt.Errorf("path %q: %w", m.CostBasis, err)
				}
			}
		}
		return NewTransferIn(day, ticker, name, Q(quantity), M(price, currency), M(basis, currency)), nil
	case KindTransferOut:
		return NewTransferOut(day, ticker, name, Q(quantity), M(price, currency)), nil
	}
	return nil, invalidf("unknown transaction kind %q", kind)
}

// pathString evaluates a jsonpath and coerces the result to a string.
func pathString(row any, path string) (string, error) {
	jval, err := jsonpath.Get(path, row)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer, so unwrap single-element lists.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", invalidf("path %q is not a string: %v", path, jval)
	}
}

// pathDecimal evaluates a jsonpath and coerces the result to a decimal.
func pathDecimal(row any, path string) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, row)
	if err != nil {
		return decimal.Zero, fmt.Errorf("path %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	d, err := toDecimal(jval)
	if err != nil {
		return decimal.Zero, fmt.Errorf("path %q: %w", path, err)
	}
	return d, nil
}

// toDecimal converts a decoded JSON value to a decimal. Broker exports
// sometimes carry numbers as strings with a comma decimal separator.
func toDecimal(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		s = strings.ReplaceAll(s, " ", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q", v)
		}
		return d, nil
	default:
		return decimal.Zero, invalidf("not a number: %v", jval)
	}
}
