package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahernanz/fiscal"
	"github.com/ahernanz/fiscal/renderer"
	"github.com/google/subcommands"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	ticker string
	method string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "display the open lots of a security" }
func (*lotsCmd) Usage() string {
	return `fsc lots -s <ticker> [-method <method>]

  Lists the open acquisition lots of a security in the order the given
  method would consume them.
`
}

func (p *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ticker, "s", "", "Security ticker")
	f.StringVar(&p.method, "method", "fifo", "Lot matching method (fifo, lifo)")
}

func (p *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.ticker == "" {
		fmt.Fprintln(os.Stderr, "-s ticker is required")
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
	lots, err := accounting.AvailableLots(p.ticker, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LotsMarkdown(p.ticker, lots, method))
	return subcommands.ExitSuccess
}
