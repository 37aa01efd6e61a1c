package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahernanz/fiscal"
	"github.com/google/subcommands"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	mappingFile string
	dryRun      bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a broker JSON export" }
func (*importCmd) Usage() string {
	return `fsc import -mapping <mapping.json> <export.json>

  Parses a broker JSON export with the jsonpath mapping and appends the
  resulting transactions to the ledger. With -n, prints what would be
  appended without writing anything.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.mappingFile, "mapping", "", "JSON file mapping the broker's fields to transaction fields")
	f.BoolVar(&p.dryRun, "n", false, "Parse and validate only, do not write to the ledger")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.mappingFile == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fsc import -mapping <mapping.json> <export.json>")
		return subcommands.ExitUsageError
	}

	mf, err := os.Open(p.mappingFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening mapping %q: %v\n", p.mappingFile, err)
		return subcommands.ExitFailure
	}
	defer mf.Close()
	mapping, err := fiscal.DecodeImportMapping(mf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ef, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening export %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer ef.Close()
	txs, err := fiscal.Import(ef, mapping)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.dryRun {
		for _, tx := range txs {
			fmt.Printf("%s %s %s\n", tx.When(), tx.What(), tx.Ticker())
		}
		fmt.Printf("Parsed %d transactions (dry run, nothing written)\n", len(txs))
		return subcommands.ExitSuccess
	}

	for _, tx := range txs {
		if status := EncodeTransaction(tx); status != subcommands.ExitSuccess {
			return status
		}
	}
	fmt.Printf("Imported %d transactions\n", len(txs))
	return subcommands.ExitSuccess
}
