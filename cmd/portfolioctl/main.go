package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
	_ "github.com/joho/godotenv/autoload"

	"portfolioapi/internal/cli"
	"portfolioapi/internal/config"
	"portfolioapi/internal/logging"
)

var verbose = flag.Bool("v", false, "Write JSON logs to stderr.")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	flag.Parse()

	cfg := config.Load()
	var w io.Writer = io.Discard
	if *verbose {
		w = os.Stderr
	}
	cli.Register(commander, cli.NewApp(cfg, logging.New(w, cfg.Location(), slog.LevelInfo)))

	os.Exit(int(commander.Execute(context.Background())))
}
