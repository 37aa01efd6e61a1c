package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahernanz/fiscal"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeFlags holds the flags shared by all transaction subcommands.
type tradeFlags struct {
	date       string
	ticker     string
	name       string
	quantity   string
	price      string
	commission string
	currency   string
}

func (p *tradeFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", fiscal.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&p.ticker, "s", "", "Security ticker")
	f.StringVar(&p.name, "name", "", "Optional display name of the security")
	f.StringVar(&p.quantity, "q", "", "Quantity of units")
	f.StringVar(&p.price, "p", "", "Unit price")
	f.StringVar(&p.commission, "c", "0", "Commission")
	f.StringVar(&p.currency, "cur", "EUR", "Currency the trade is denominated in")
}

// parse turns the raw flags into typed values. Amounts are parsed as
// decimals, not floats, so "10.10" stays exactly 10.10.
func (p *tradeFlags) parse() (day fiscal.Date, quantity fiscal.Quantity, price, commission fiscal.Money, err error) {
	if p.ticker == "" {
		return day, quantity, price, commission, fmt.Errorf("-s ticker is required")
	}
	day, err = fiscal.ParseDate(p.date)
	if err != nil {
		return day, quantity, price, commission, fmt.Errorf("invalid date: %w", err)
	}
	q, err := decimal.NewFromString(p.quantity)
	if err != nil {
		return day, quantity, price, commission, fmt.Errorf("invalid quantity %q", p.quantity)
	}
	pr, err := decimal.NewFromString(p.price)
	if err != nil {
		return day, quantity, price, commission, fmt.Errorf("invalid price %q", p.price)
	}
	com, err := decimal.NewFromString(p.commission)
	if err != nil {
		return day, quantity, price, commission, fmt.Errorf("invalid commission %q", p.commission)
	}
	return day, fiscal.Q(q), fiscal.M(pr, p.currency), fiscal.M(com, p.currency), nil
}

// buyCmd holds the flags for the 'buy' subcommand.
type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record the acquisition of a security" }
func (*buyCmd) Usage() string {
	return `fsc buy -s <ticker> -q <quantity> -p <price> [-c <commission>] [-d <date>] [-cur <currency>]

  Records a buy transaction. The commission is added to the lot's cost basis.
`
}
func (p *buyCmd) SetFlags(f *flag.FlagSet) { p.set(f) }

func (p *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, commission, err := p.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return EncodeTransaction(fiscal.NewBuy(day, p.ticker, p.name, quantity, price, commission))
}

// sellCmd holds the flags for the 'sell' subcommand.
type sellCmd struct {
	tradeFlags
	gain string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record the disposal of a security" }
func (*sellCmd) Usage() string {
	return `fsc sell -s <ticker> -q <quantity> -p <price> [-c <commission>] [-d <date>] [-gain <amount>]

  Records a sell transaction. The commission reduces the proceeds. For
  foreign-currency sales, -gain records the broker-computed realized gain
  already converted to the reporting currency; it takes precedence over the
  price-based computation.
`
}
func (p *sellCmd) SetFlags(f *flag.FlagSet) {
	p.set(f)
	f.StringVar(&p.gain, "gain", "", "Pre-converted realized gain in the reporting currency")
}

func (p *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, commission, err := p.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	sell := fiscal.NewSell(day, p.ticker, p.name, quantity, price, commission)
	if p.gain != "" {
		gain, err := decimal.NewFromString(p.gain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid gain %q\n", p.gain)
			return subcommands.ExitUsageError
		}
		sell = sell.WithGainOverride(gain)
	}
	return EncodeTransaction(sell)
}

// transferInCmd holds the flags for the 'transfer-in' subcommand.
type transferInCmd struct {
	tradeFlags
	costBasis string
}

func (*transferInCmd) Name() string { return "transfer-in" }
func (*transferInCmd) Synopsis() string {
	return "record units arriving from another fund in a fiscally neutral transfer"
}
func (*transferInCmd) Usage() string {
	return `fsc transfer-in -s <ticker> -q <quantity> -p <price> [-basis <amount>] [-d <date>]

  Records an incoming fund transfer (traspaso). The lot enters the book at
  the inherited fiscal cost basis given with -basis; without it, the
  transfer-day price is used instead.
`
}
func (p *transferInCmd) SetFlags(f *flag.FlagSet) {
	p.set(f)
	f.StringVar(&p.costBasis, "basis", "", "Inherited fiscal cost of the transferred units")
}

func (p *transferInCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, _, err := p.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	basis := fiscal.M(0, p.currency)
	if p.costBasis != "" {
		d, err := decimal.NewFromString(p.costBasis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid cost basis %q\n", p.costBasis)
			return subcommands.ExitUsageError
		}
		basis = fiscal.M(d, p.currency)
	}
	return EncodeTransaction(fiscal.NewTransferIn(day, p.ticker, p.name, quantity, price, basis))
}

// transferOutCmd holds the flags for the 'transfer-out' subcommand.
type transferOutCmd struct{ tradeFlags }

func (*transferOutCmd) Name() string { return "transfer-out" }
func (*transferOutCmd) Synopsis() string {
	return "record units leaving for another fund in a fiscally neutral transfer"
}
func (*transferOutCmd) Usage() string {
	return `fsc transfer-out -s <ticker> -q <quantity> -p <price> [-d <date>]

  Records an outgoing fund transfer (traspaso). No gain is realized: every
  open lot is reduced proportionally and carries its cost along.
`
}
func (p *transferOutCmd) SetFlags(f *flag.FlagSet) { p.set(f) }

func (p *transferOutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, quantity, price, _, err := p.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return EncodeTransaction(fiscal.NewTransferOut(day, p.ticker, p.name, quantity, price))
}
