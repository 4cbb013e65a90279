package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/env"
	"github.com/kryonlabs/kryc/pkg/kryc"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "runs the full pipeline without writing output, for fast linting",
		ArgsUsage: "SOURCE.kry",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional include search `DIR`"},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	e := env.FromContext(ctx)
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("check requires a single SOURCE argument")
	}
	src := cmd.Args().Get(0)
	opts := optionsFromCommand(cmd, e)

	if err := kryc.Check(src, opts); err != nil {
		return fmt.Errorf("check %s: %w", src, err)
	}
	e.Log.Info("ok", zap.String("file", src))
	return nil
}
