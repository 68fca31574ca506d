package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"livraria/internal/cli"
)

func main() {
	// Ctrl+C cancels ctx; a running SQL statement either completes or rolls back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// cobra stays silent on errors; this is the only place they are printed.
	if err := cli.Execute(ctx, cli.NewApp(), nil); err != nil {
		log.Error("livraria failed", "err", err)
		stop()
		os.Exit(1)
	}
}
