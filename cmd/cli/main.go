package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	ucli "github.com/urfave/cli/v2"

	"github.com/vk/buildgridgo/internal/cli"
)

// main is the entrypoint for the buildgridgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = listenOSKillSignalsContext(ctx)

	os.Exit(run(ctx, os.Args))
}

// run executes the CLI and converts the resulting error into a process exit
// code, keeping main itself free of logic that tests cannot reach.
func run(ctx context.Context, args []string) int {
	err := cli.NewApp(os.Stdout, os.Stderr).RunContext(ctx, args)
	if err == nil {
		return 0
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	var coder ucli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// listenOSKillSignalsContext cancels the returned context on SIGINT/SIGTERM
// so an in-flight run can abort its processes and report what it has.
func listenOSKillSignalsContext(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
