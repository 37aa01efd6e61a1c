package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/ahernanz/fiscal/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: exits here when invoked by the shell.
	completion().Complete("fsc")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command tree for shell completion.
func completion() *complete.Command {
	methods := predict.Set{"fifo", "lifo"}
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		flags := make(map[string]complete.Predictor)
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		fs.VisitAll(func(f *flag.Flag) {
			switch f.Name {
			case "method":
				flags[f.Name] = methods
			case "mapping", "brackets":
				flags[f.Name] = predict.Files("*.json")
			default:
				flags[f.Name] = predict.Something
			}
		})
		sub[c.Name()] = &complete.Command{Flags: flags}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"f":        predict.Files("*.jsonl"),
			"brackets": predict.Files("*.json"),
			"currency": predict.Something,
		},
	}
}
