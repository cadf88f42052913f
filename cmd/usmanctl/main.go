package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/usman-global/usman-books/cmd/usmanctl/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand(cli.Options{}).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrImbalanced):
		os.Exit(10)
	default:
		_, _ = fmt.Fprintln(os.Stderr, "usmanctl:", err)
		os.Exit(1)
	}
}
