// Package main is the entry point for the idxc CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/idxc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "idxc:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
