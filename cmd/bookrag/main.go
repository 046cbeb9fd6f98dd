package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/4thel00z/bookrag/internal"
	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := internal.LoadDotEnv(internal.DotEnvName); err != nil {
		fmt.Fprintf(os.Stderr, "bookrag: %v\n", err)
		os.Exit(internal.ExitCode(err))
	}

	rootCmd := NewRootCmd(version, newApp())
	if err := fang.Execute(ctx, rootCmd); err != nil {
		stop()
		os.Exit(internal.ExitCode(err))
	}
}
