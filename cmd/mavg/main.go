package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/mavg/internal/cli"
)

func main() {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Run(ctx, os.Args[1:], cli.OSIO())
	if code := cli.ExitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "mavg: %v\n", err)
		stop()
		os.Exit(code)
	}
}
