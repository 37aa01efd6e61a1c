package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahernanz/fiscal"
	"github.com/ahernanz/fiscal/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	prices stringMap
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions" }
func (*positionsCmd) Usage() string {
	return `fsc positions [-price <ticker>=<price> ...]

  Aggregates the open lots of every security into a positions table.
  Repeatable -price flags add market value and unrealized gain columns.
`
}

func (p *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&p.prices, "price", "Current unit price of a ticker, as ticker=price. Repeatable.")
}

func (p *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	prices := make(map[string]fiscal.Money, len(p.prices))
	for ticker, value := range p.prices {
		d, err := decimal.NewFromString(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid price for %s: %q\n", ticker, value)
			return subcommands.ExitUsageError
		}
		prices[ticker] = fiscal.M(d, accounting.Currency())
	}

	positions, err := accounting.Positions(prices)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.PositionsMarkdown(positions, accounting.Ledger().NewestTransactionDate()))
	return subcommands.ExitSuccess
}

// stringMap is a repeatable key=value flag.
type stringMap map[string]string

func (m stringMap) String() string {
	return fmt.Sprint(map[string]string(m))
}

func (m *stringMap) Set(s string) error {
	if *m == nil {
		*m = make(map[string]string)
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			(*m)[s[:i]] = s[i+1:]
			return nil
		}
	}
	return fmt.Errorf("expected key=value, got %q", s)
}
