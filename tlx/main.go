package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/taxlot/taxlot/cmd"
)

func main() {
	// A .env next to the binary may set TAXLOT_CONFIG; absence is fine.
	_ = godotenv.Load()

	// Shell completion for subcommands and shared flags.
	completer := &complete.Command{
		Sub: map[string]*complete.Command{
			"report":      {Flags: map[string]complete.Predictor{"raw": predict.Nothing, "from": predict.Nothing, "to": predict.Nothing}},
			"balances":    {},
			"events":      {Flags: map[string]complete.Predictor{"from": predict.Nothing, "to": predict.Nothing}},
			"withdrawals": {Flags: map[string]complete.Predictor{"from": predict.Nothing, "to": predict.Nothing}},
			"export":      {Flags: map[string]complete.Predictor{"o": predict.Files("*.csv"), "from": predict.Nothing, "to": predict.Nothing}},
		},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"v":      predict.Nothing,
		},
	}
	completer.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
