// Package renderer turns fiscal query results into markdown reports.
//
// Every function returns a self-contained markdown document; terminal
// styling is the caller's concern.
package renderer

import (
	"fmt"
	"strings"

	"github.com/ahernanz/fiscal"
)

// PositionsMarkdown renders the open positions table.
func PositionsMarkdown(positions []fiscal.Position, asOf fiscal.Date) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Positions as of %s\n\n", asOf)
	if len(positions) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}

	priced := false
	for _, p := range positions {
		if !p.MarketValue.IsZero() {
			priced = true
			break
		}
	}

	if priced {
		fmt.Fprintln(&b, "| Security | Quantity | Avg Cost | Cost Basis | Market Value | Unrealized |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	} else {
		fmt.Fprintln(&b, "| Security | Quantity | Avg Cost | Cost Basis |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	}

	var totalCost, totalValue, totalGain fiscal.Money
	for _, p := range positions {
		label := p.Ticker
		if p.Name != "" && p.Name != p.Ticker {
			label = fmt.Sprintf("%s (%s)", p.Name, p.Ticker)
		}
		if priced {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				label, p.Quantity.Round(), p.AvgCost.Round(), p.CostBasis.Round(),
				p.MarketValue.Round(), p.UnrealizedGain.Round().SignedString())
			totalValue = totalValue.Add(p.MarketValue)
			totalGain = totalGain.Add(p.UnrealizedGain)
		} else {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				label, p.Quantity.Round(), p.AvgCost.Round(), p.CostBasis.Round())
		}
		totalCost = totalCost.Add(p.CostBasis)
	}
	if priced {
		fmt.Fprintf(&b, "| **Total** | | | **%s** | **%s** | **%s** |\n",
			totalCost.Round(), totalValue.Round(), totalGain.Round().SignedString())
	} else {
		fmt.Fprintf(&b, "| **Total** | | | **%s** |\n", totalCost.Round())
	}
	return b.String()
}

// LotsMarkdown renders the open lots of one ticker.
func LotsMarkdown(ticker string, lots []fiscal.Lot, method fiscal.Method) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Lots of %s\n\n", ticker)
	fmt.Fprintf(&b, "Method: %s\n\n", method)
	if len(lots) == 0 {
		fmt.Fprintln(&b, "No open lots.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Acquired | Remaining | Of | Unit Cost | Cost Basis | Origin |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---|")
	var quantity fiscal.Quantity
	var cost fiscal.Money
	for _, lot := range lots {
		origin := "buy"
		if lot.Transferred {
			origin = "transfer"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			lot.AcquisitionDate, lot.Remaining.Round(), lot.Original.Round(),
			lot.UnitCost.Round(), lot.CostBasis().Round(), origin)
		quantity = quantity.Add(lot.Remaining)
		cost = cost.Add(lot.CostBasis())
	}
	fmt.Fprintf(&b, "| **Total** | **%s** | | | **%s** | |\n", quantity.Round(), cost.Round())
	return b.String()
}
