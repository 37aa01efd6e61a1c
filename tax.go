package fiscal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// TaxBracket is one marginal-rate band of a progressive tax table.
// An invalid Upper marks the unbounded last band.
type TaxBracket struct {
	Lower decimal.Decimal     `json:"lower"`
	Upper decimal.NullDecimal `json:"upper"` // null means +inf
	Rate  decimal.Decimal     `json:"rate"`  // marginal rate as a fraction, e.g. 0.19
}

// Bounded reports whether the bracket has a finite upper bound.
func (b TaxBracket) Bounded() bool { return b.Upper.Valid }

func (b TaxBracket) String() string {
	if !b.Bounded() {
		return fmt.Sprintf("> %s at %s%%", b.Lower, b.Rate.Mul(decimal.NewFromInt(100)))
	}
	return fmt.Sprintf("%s - %s at %s%%", b.Lower, b.Upper.Decimal, b.Rate.Mul(decimal.NewFromInt(100)))
}

// BracketTable is a progressive tax table, ordered by ascending Lower bound.
type BracketTable []TaxBracket

// SpanishSavingsBrackets returns the published IRPF savings-income brackets
// for 2024/2025, the default jurisdiction table.
func SpanishSavingsBrackets() BracketTable {
	d := decimal.NewFromInt
	rate := decimal.NewFromFloat
	bounded := func(v int64) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: d(v), Valid: true}
	}
	return BracketTable{
		{Lower: d(0), Upper: bounded(6_000), Rate: rate(0.19)},
		{Lower: d(6_000), Upper: bounded(50_000), Rate: rate(0.21)},
		{Lower: d(50_000), Upper: bounded(200_000), Rate: rate(0.23)},
		{Lower: d(200_000), Upper: bounded(300_000), Rate: rate(0.27)},
		{Lower: d(300_000), Rate: rate(0.28)},
	}
}

// Validate checks that the table is non-empty, starts at zero, is contiguous
// and non-overlapping, and covers [0, +inf). Violations are
// *ConfigurationError values.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return configf("tax bracket table is empty")
	}
	if !t[0].Lower.IsZero() {
		return configf("first tax bracket must start at 0, got %s", t[0].Lower)
	}
	for i, b := range t {
		if b.Rate.IsNegative() {
			return configf("tax bracket %s has a negative rate", b)
		}
		last := i == len(t)-1
		if last {
			if b.Bounded() {
				return configf("last tax bracket must be unbounded, got upper %s", b.Upper.Decimal)
			}
			break
		}
		if !b.Bounded() {
			return configf("only the last tax bracket may be unbounded, bracket %d is not", i)
		}
		if !b.Upper.Decimal.GreaterThan(b.Lower) {
			return configf("tax bracket %s has a non-positive width", b)
		}
		if !t[i+1].Lower.Equal(b.Upper.Decimal) {
			return configf("tax brackets are not contiguous: %s then %s", b, t[i+1])
		}
	}
	return nil
}

// Tax computes the progressive marginal tax owed on a taxable base.
// A base of zero or less owes nothing. The result is monotonically
// non-decreasing and continuous at bracket boundaries.
func (t BracketTable) Tax(base decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, share := range t.Breakdown(base) {
		total = total.Add(share.Tax)
	}
	return total
}

// BracketShare is the slice of a taxable base falling in one bracket.
type BracketShare struct {
	Bracket TaxBracket
	Taxable decimal.Decimal
	Tax     decimal.Decimal
}

// Breakdown returns the per-bracket decomposition of the tax on a base,
// skipping brackets the base never reaches.
func (t BracketTable) Breakdown(base decimal.Decimal) []BracketShare {
	if !base.IsPositive() {
		return nil
	}
	var shares []BracketShare
	for _, b := range t {
		if !base.GreaterThan(b.Lower) {
			break
		}
		top := base
		if b.Bounded() && b.Upper.Decimal.LessThan(base) {
			top = b.Upper.Decimal
		}
		taxable := top.Sub(b.Lower)
		shares = append(shares, BracketShare{Bracket: b, Taxable: taxable, Tax: taxable.Mul(b.Rate)})
	}
	return shares
}

// DecodeBrackets reads a JSON bracket table and validates it, so a caller
// can swap the jurisdiction's published table for another one.
func DecodeBrackets(r io.Reader) (BracketTable, error) {
	var t BracketTable
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("could not decode tax bracket table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
