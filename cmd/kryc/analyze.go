package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/env"
	"github.com/kryonlabs/kryc/pkg/kryc"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "reports header and section metadata for an existing KRB binary",
		ArgsUsage: "OUTPUT.krb",
		Action:    runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	e := env.FromContext(ctx)
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("analyze requires a single KRB path argument")
	}
	path := cmd.Args().Get(0)

	info, err := kryc.Analyze(path)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}
	e.Log.Info("krb info",
		zap.String("file", path),
		zap.Int("version_major", info.VersionMajor),
		zap.Int("version_minor", info.VersionMinor),
		zap.Uint16("flags", info.Flags),
		zap.Int("elements", info.ElementCount),
		zap.Int64("size", info.FileSize),
	)
	return nil
}
