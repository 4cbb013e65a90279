// Command kryc compiles KRY source into KRB binaries. See
// pkg/kryc for the embeddable library behind compile/check/analyze.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/config"
	"github.com/kryonlabs/kryc/internal/env"
)

func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	log, err := env.NewLogger(cfg.Logging)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e := env.New(cfg, log)
	e.Log.Debug("kryc started", zap.Strings("args", os.Args))
	return env.WithEnv(ctx, e), nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	e := env.FromContext(ctx)
	e.Log.Debug("kryc finished", zap.Duration("elapsed", e.Uptime()))
	// zap.Sync on a console core commonly fails with ENOTTY; not worth
	// surfacing as a command failure.
	_ = e.Close()
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	e := env.FromContext(ctx)
	if e.Log != nil {
		e.Log.Error("command failed", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "kryc",
		Usage:           "compiles KRY declarative UI source into KRB binaries",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load project configuration from `FILE` (YAML)"},
		},
		Commands: []*cli.Command{
			compileCommand(),
			checkCommand(),
			analyzeCommand(),
			watchCommand(),
			configCommand(),
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "kryc: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
