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

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	ticker   string
	quantity string
	price    string
	method   string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "estimate the fiscal outcome of a hypothetical sale" }
func (*simulateCmd) Usage() string {
	return `fsc simulate -s <ticker> -q <quantity> -p <price> [-method <method>]

  Computes the gain, estimated tax and net-after-tax of selling a quantity
  at a price, without recording anything. Flags wash-sale risk when a recent
  purchase would make a loss non-deductible.
`
}

func (p *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ticker, "s", "", "Security ticker")
	f.StringVar(&p.quantity, "q", "", "Quantity of units to sell")
	f.StringVar(&p.price, "p", "", "Unit price of the hypothetical sale")
	f.StringVar(&p.method, "method", "fifo", "Lot matching method (fifo, lifo)")
}

func (p *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.ticker == "" {
		fmt.Fprintln(os.Stderr, "-s ticker is required")
		return subcommands.ExitUsageError
	}
	quantity, err := decimal.NewFromString(p.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid quantity %q\n", p.quantity)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(p.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid price %q\n", p.price)
		return subcommands.ExitUsageError
	}
	method, err := fiscal.ParseMethod(p.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sim, err := accounting.SimulateSale(p.ticker, fiscal.Q(quantity), fiscal.M(price, accounting.Currency()), method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SimulationMarkdown(sim))
	return subcommands.ExitSuccess
}
