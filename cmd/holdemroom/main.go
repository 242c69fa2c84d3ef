package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run a table with its HTTP and websocket API"`
	Simulate SimulateCmd      `cmd:"" help:"Play bots against each other locally"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate and rank hands"`
	Watch    WatchCmd         `cmd:"" help:"Watch a running table"`
	Hands    HandsCmd         `cmd:"" help:"Summarise a recorded hand history session"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdemroom"),
		kong.Description("Texas Hold'em table with a single-writer authority"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
