// Package cmd implements the CLI application to manage a fiscal ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/ahernanz/fiscal"
	"github.com/google/subcommands"
)

// Commands lists every subcommand of the application, for registration and
// for shell completion.
var Commands = []subcommands.Command{
	&buyCmd{},
	&sellCmd{},
	&transferInCmd{},
	&transferOutCmd{},
	&positionsCmd{},
	&lotsCmd{},
	&fiscalCmd{},
	&detailCmd{},
	&washSalesCmd{},
	&simulateCmd{},
	&importCmd{},
	&fmtCmd{},
}

// Register registers every subcommand on a commander. A main package calls
// Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// As a CLI application it has a very short lived lifecycle, so it is ok to
// use global variables for the app-level flags.

var ledgerFile = flag.String("f", "fiscal.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var bracketsFile = flag.String("brackets", "", "Path to a JSON tax bracket table. Defaults to the Spanish savings-income table.")
var currency = flag.String("currency", "EUR", "Reporting currency")

// DecodeLedger reads the app ledger file. A missing file is an empty ledger.
func DecodeLedger() (*fiscal.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, ledger %q does not exist, starting from an empty one", *ledgerFile)
		return fiscal.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return fiscal.DecodeLedger(f)
}

// loadBrackets reads the bracket table file, or returns the default table.
func loadBrackets() (fiscal.BracketTable, error) {
	if *bracketsFile == "" {
		return fiscal.SpanishSavingsBrackets(), nil
	}
	f, err := os.Open(*bracketsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open brackets file %q: %w", *bracketsFile, err)
	}
	defer f.Close()
	return fiscal.DecodeBrackets(f)
}

// openAccounting loads the ledger and brackets into an accounting view.
func openAccounting() (*fiscal.Accounting, error) {
	ledger, err := DecodeLedger()
	if err != nil {
		return nil, err
	}
	brackets, err := loadBrackets()
	if err != nil {
		return nil, err
	}
	return fiscal.NewAccounting(ledger, brackets, *currency)
}

// EncodeTransaction validates a transaction against the current ledger and
// appends it to the app ledger file.
func EncodeTransaction(tx fiscal.Transaction) subcommands.ExitStatus {
	accounting, err := openAccounting()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := accounting.Validate(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid transaction: %v\n", err)
		return subcommands.ExitFailure
	}

	filename := *ledgerFile
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	single := fiscal.NewLedger()
	if err := single.Append(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fiscal.EncodeLedger(f, single); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended %s of %s to %s\n", tx.What(), tx.Ticker(), filename)
	return subcommands.ExitSuccess
}
