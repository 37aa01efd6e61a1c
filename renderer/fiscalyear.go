package renderer

import (
	"fmt"
	"strings"

	"github.com/ahernanz/fiscal"
	"github.com/shopspring/decimal"
)

// FiscalYearMarkdown renders the yearly summary with its bracket breakdown.
func FiscalYearMarkdown(s *fiscal.FiscalYearSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Fiscal Year %d\n\n", s.Year)
	fmt.Fprintf(&b, "Method: %s\n\n", s.Method)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Sales | %d |\n", s.Sales)
	fmt.Fprintf(&b, "| Total gains | %s |\n", s.TotalGains)
	fmt.Fprintf(&b, "| Total losses | %s |\n", s.TotalLosses)
	fmt.Fprintf(&b, "| Net gain | %s |\n", s.NetGain.SignedString())
	if !s.WashSaleLoss.IsZero() {
		fmt.Fprintf(&b, "| Wash-sale losses | %s |\n", s.WashSaleLoss)
		fmt.Fprintf(&b, "| Deductible losses | %s |\n", s.DeductibleLoss)
	}
	fmt.Fprintf(&b, "| Tax base | %s |\n", s.TaxBase)
	fmt.Fprintf(&b, "| **Estimated tax** | **%s** |\n", s.EstimatedTax)
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Net Gain per Quarter\n\n")
	fmt.Fprintln(&b, "| Q1 | Q2 | Q3 | Q4 |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n\n",
		s.ByQuarter[0].SignedString(), s.ByQuarter[1].SignedString(),
		s.ByQuarter[2].SignedString(), s.ByQuarter[3].SignedString())

	if len(s.Breakdown) > 0 {
		fmt.Fprint(&b, "## Tax Breakdown\n\n")
		fmt.Fprintln(&b, "| Bracket | Rate | Taxable | Tax |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|")
		for _, share := range s.Breakdown {
			fmt.Fprintf(&b, "| %s | %s%% | %s | %s |\n",
				bracketBounds(share.Bracket),
				share.Bracket.Rate.Mul(decimal.NewFromInt(100)),
				fiscal.M(share.Taxable, s.Currency).Round(),
				fiscal.M(share.Tax, s.Currency).Round())
		}
	}
	return b.String()
}

// bracketBounds formats a bracket's bounds without its rate.
func bracketBounds(b fiscal.TaxBracket) string {
	if !b.Bounded() {
		return fmt.Sprintf("over %s", b.Lower)
	}
	return fmt.Sprintf("%s to %s", b.Lower, b.Upper.Decimal)
}

// DetailMarkdown renders the per-lot sale records of a year.
func DetailMarkdown(year int, records []fiscal.SaleRecord, method fiscal.Method) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sales Detail %d\n\n", year)
	fmt.Fprintf(&b, "Method: %s\n\n", method)
	if len(records) == 0 {
		fmt.Fprintln(&b, "No sales recorded.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Sold | Security | Quantity | Acquired | Held | Proceeds | Cost Basis | Gain | Flags |")
	fmt.Fprintln(&b, "|:---|:---|---:|:---|---:|---:|---:|---:|:---|")
	for _, r := range records {
		var flags []string
		if r.WashSale {
			flags = append(flags, "wash-sale")
		}
		if r.ShortTerm() {
			flags = append(flags, "short-term")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %dd | %s | %s | %s | %s |\n",
			r.SaleDate, r.Ticker, r.Quantity.Round(), r.LotDate, r.DaysHeld,
			r.Proceeds.Round(), r.CostBasis.Round(), r.Gain.Round().SignedString(),
			strings.Join(flags, ", "))
	}
	return b.String()
}

// WashSalesMarkdown renders the flagged loss sales of a year.
func WashSalesMarkdown(year int, records []fiscal.SaleRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Wash Sales %d\n\n", year)
	if len(records) == 0 {
		fmt.Fprintln(&b, "No wash sales detected.")
		return b.String()
	}

	fmt.Fprintln(&b, "Losses on these sales may not be deductible: the same security")
	fmt.Fprintln(&b, "was repurchased within two months of the sale.")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Sold | Security | Quantity | Loss |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.SaleDate, r.Ticker, r.Quantity.Round(), r.Gain.Round().SignedString())
	}
	return b.String()
}

// SimulationMarkdown renders the outcome of a hypothetical sale.
func SimulationMarkdown(sim *fiscal.Simulation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Simulated Sale of %s %s\n\n", sim.Quantity, sim.Ticker)
	if sim.Insufficient {
		fmt.Fprintf(&b, "Insufficient lots: requested %s but only %s available.\n",
			sim.Quantity, sim.Available)
		return b.String()
	}

	fmt.Fprintf(&b, "Unit price: %s\n\n", sim.Price)
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Proceeds | %s |\n", sim.Proceeds.Round())
	fmt.Fprintf(&b, "| Cost basis | %s |\n", sim.CostBasis.Round())
	fmt.Fprintf(&b, "| Gain | %s |\n", sim.Gain.Round().SignedString())
	fmt.Fprintf(&b, "| Estimated tax | %s |\n", sim.EstimatedTax)
	fmt.Fprintf(&b, "| **Net after tax** | **%s** |\n", sim.NetAfterTax.Round().SignedString())
	fmt.Fprintln(&b)

	if sim.ShortTerm {
		fmt.Fprintln(&b, "Some consumed lots were held less than a year.")
	}
	if sim.WashSaleRisk {
		fmt.Fprintln(&b, "Warning: a purchase inside the two-month window would make a loss non-deductible.")
	}

	if len(sim.Records) > 0 {
		fmt.Fprint(&b, "\n## Consumed Lots\n\n")
		fmt.Fprintln(&b, "| Acquired | Quantity | Cost Basis | Gain |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|")
		for _, r := range sim.Records {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				r.LotDate, r.Quantity.Round(), r.CostBasis.Round(), r.Gain.Round().SignedString())
		}
	}
	return b.String()
}

// WarningsMarkdown renders the ambiguous-ordering warnings of a replay.
func WarningsMarkdown(warnings []fiscal.AmbiguousOrderingWarning) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Ledger Warnings\n\n")
	if len(warnings) == 0 {
		fmt.Fprintln(&b, "No warnings.")
		return b.String()
	}
	for _, w := range warnings {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	return b.String()
}
