package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/shuttlerank/internal/cli"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		// The logger may not be initialized when flag or config parsing fails.
		os.Stderr.WriteString("shuttlerank: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
