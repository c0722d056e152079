// Package main provides the entry point for snapshot-merger.
//
// snapshot-merger builds a bootable snapshot for a network from two
// ledgers: validator identity state and genesis from one, general account
// state from the other.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/snapshot-merger/internal/cli/command"
	"github.com/yndnr/snapshot-merger/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background(), func(sig os.Signal) {
		fmt.Fprintf(os.Stderr, "received %s again, exiting\n", sig)
		os.Exit(130)
	})
	code := command.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
