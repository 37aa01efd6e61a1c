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

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct {
	outputFile string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fsc fmt [-o <output_file>]

  Validates and formats the ledger file. This command reads all transactions,
  validates them, sorts them by date, and writes them back in a canonical
  JSONL format. By default it rewrites the ledger file in place.
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.outputFile, "o", "", "Write the formatted ledger here instead of in place")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	// Replay the whole ledger before rewriting it: a ledger that does not
	// replay should be fixed, not canonicalized.
	book, err := fiscal.NewBook(ledger, ledger.NewestTransactionDate(), fiscal.FIFO)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: ledger does not replay: %v\n", err)
		return subcommands.ExitFailure
	}
	if warnings := book.Warnings(); len(warnings) > 0 {
		printMarkdown(renderer.WarningsMarkdown(warnings))
	}

	filename := p.outputFile
	if filename == "" {
		filename = *ledgerFile
	}
	out, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	if err := fiscal.EncodeLedger(out, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d transactions into %s\n", ledger.Len(), filename)
	return subcommands.ExitSuccess
}
