package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the roulette server"`
	Bot     BotCmd           `cmd:"" help:"Run scripted bots against a server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("roulette"),
		kong.Description("Multi-room roulette round coordinator"),
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
