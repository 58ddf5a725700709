// Command waitfor polls a command or file condition until it holds or the
// maximum wait runs out.
//
//	waitfor --timeout 20s --contains Success -- curl -s localhost:8080/status
//	waitfor --plan login.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amp-labs/amp-sync/logger"
	"github.com/amp-labs/amp-sync/synchronize"
	"github.com/amp-labs/amp-sync/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if _, err := logger.ConfigureLogging(ctx, "waitfor", logger.WithOutput(stderr)); err != nil {
		fmt.Fprintln(stderr, "waitfor:", err)

		return exitUsage
	}

	otelCfg, err := telemetry.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "waitfor:", err)

		return exitUsage
	}

	shutdown, err := telemetry.Initialize(ctx, otelCfg)
	if err != nil {
		fmt.Fprintln(stderr, "waitfor:", err)

		return exitUsage
	}

	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Get(ctx).Warn("failed to flush traces", "error", err)
		}
	}()

	cfg, err := synchronize.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "waitfor:", err)

		return exitUsage
	}

	root := newRootCmd(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err = root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "waitfor:", err)
	}

	return exitCode(err)
}
