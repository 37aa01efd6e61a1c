package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ahernanz/fiscal"
	"github.com/ahernanz/fiscal/renderer"
	"github.com/google/subcommands"
)

// yearFlags holds the flags shared by the yearly report subcommands.
type yearFlags struct {
	year   int
	method string
}

func (p *yearFlags) set(f *flag.FlagSet) {
	f.IntVar(&p.year, "y", time.Now().Year(), "Fiscal year to report on")
	f.StringVar(&p.method, "method", "fifo", "Lot matching method (fifo, lifo)")
}

func (p *yearFlags) parseMethod() (fiscal.Method, error) {
	return fiscal.ParseMethod(p.method)
}

// fiscalCmd holds the flags for the 'fiscal' subcommand.
type fiscalCmd struct{ yearFlags }

func (*fiscalCmd) Name() string     { return "fiscal" }
func (*fiscalCmd) Synopsis() string { return "yearly fiscal summary with estimated tax" }
func (*fiscalCmd) Usage() string {
	return `fsc fiscal [-y <year>] [-method <method>]

  Aggregates the year's realized gains and losses, computes the tax base and
  the estimated tax under the progressive bracket table, and shows the
  per-quarter and per-bracket decomposition.
`
}
func (p *fiscalCmd) SetFlags(f *flag.FlagSet) { p.set(f) }

func (p *fiscalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	method, err := p.parseMethod()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	summary, err := accounting.FiscalYearSummary(p.year, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.FiscalYearMarkdown(summary))
	return subcommands.ExitSuccess
}

// detailCmd holds the flags for the 'detail' subcommand.
type detailCmd struct{ yearFlags }

func (*detailCmd) Name() string     { return "detail" }
func (*detailCmd) Synopsis() string { return "per-lot sale records of a fiscal year" }
func (*detailCmd) Usage() string {
	return `fsc detail [-y <year>] [-method <method>]

  Lists every sale record of the year: the lot it consumed, the holding
  period, proceeds, cost basis and gain, with wash-sale and short-term flags.
`
}
func (p *detailCmd) SetFlags(f *flag.FlagSet) { p.set(f) }

func (p *detailCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	method, err := p.parseMethod()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records, err := accounting.FiscalYearDetail(p.year, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.DetailMarkdown(p.year, records, method))
	return subcommands.ExitSuccess
}

// washSalesCmd holds the flags for the 'wash-sales' subcommand.
type washSalesCmd struct{ yearFlags }

func (*washSalesCmd) Name() string     { return "wash-sales" }
func (*washSalesCmd) Synopsis() string { return "loss sales with a repurchase inside the two-month window" }
func (*washSalesCmd) Usage() string {
	return `fsc wash-sales [-y <year>] [-method <method>]

  Lists the year's loss sales where the same security was bought within two
  months before or after the sale. Such losses may not be deductible.
`
}
func (p *washSalesCmd) SetFlags(f *flag.FlagSet) { p.set(f) }

func (p *washSalesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	method, err := p.parseMethod()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records, err := accounting.WashSales(p.year, method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.WashSalesMarkdown(p.year, records))
	return subcommands.ExitSuccess
}
