package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/kryonlabs/kryc/internal/config"
	"github.com/kryonlabs/kryc/internal/env"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect kryc project configuration",
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "prints the active (or default) configuration as YAML",
				ArgsUsage: "[DESTINATION]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "dump built-in defaults instead of the loaded config"},
				},
				Action: runConfigDump,
			},
		},
	}
}

func runConfigDump(ctx context.Context, cmd *cli.Command) error {
	e := env.FromContext(ctx)
	cfg := e.Cfg
	if cmd.Bool("default") {
		cfg = config.Default()
	}
	data, err := config.Dump(cfg)
	if err != nil {
		return fmt.Errorf("dump config: %w", err)
	}

	out := os.Stdout
	if cmd.Args().Len() > 0 {
		f, err := os.Create(cmd.Args().Get(0))
		if err != nil {
			return fmt.Errorf("create %s: %w", cmd.Args().Get(0), err)
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(data)
	return err
}
