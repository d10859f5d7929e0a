package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/formidable/cmd/formidable/commands"
	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("formidable"),
		kong.Description("Build static sites from YAML route tables, views and templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	g := commands.NewGlobal(ctx, os.Stdout)
	err := kctx.Run(g, &cli)
	if cerr := g.Close(); err == nil {
		err = cerr
	}
	stop()

	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
