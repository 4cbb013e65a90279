package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/env"
	"github.com/kryonlabs/kryc/pkg/kryc"
)

func optionsFromCommand(cmd *cli.Command, e *env.Env) kryc.Options {
	opts := kryc.Options{
		OptimizationLevel:  int(cmd.Int("optimize")),
		TargetPlatform:     kryc.TargetPlatform(cmd.String("target")),
		EmbedScripts:       cmd.Bool("embed-scripts") || e.Cfg.EmbedScripts,
		IncludeDirectories: append(append([]string{}, e.Cfg.IncludeDirs...), cmd.StringSlice("include")...),
		CustomVariables:    e.Cfg.CustomVariables,
		DebugMode:          cmd.Bool("debug"),
		MaxFileSize:        cmd.Int64("max-file-size"),
	}
	if opts.OptimizationLevel == 0 {
		opts.OptimizationLevel = e.Cfg.OptimizationLevel
	}
	if opts.TargetPlatform == "" {
		opts.TargetPlatform = kryc.TargetPlatform(e.Cfg.TargetPlatform)
	}
	if opts.TargetPlatform == "" {
		opts.TargetPlatform = kryc.PlatformUniversal
	}
	return opts
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "compiles a KRY source file into a KRB binary",
		ArgsUsage: "SOURCE.kry OUTPUT.krb",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "optimize", Aliases: []string{"O"}, Value: 0, Usage: "optimization level (0-2)"},
			&cli.StringFlag{Name: "target", Usage: "target platform (desktop, mobile, web, embedded, universal)"},
			&cli.BoolFlag{Name: "embed-scripts", Usage: "embed referenced script bodies instead of external resource refs"},
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional include search `DIR`"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug mode (the emitted binary is the same either way)"},
			&cli.Int64Flag{Name: "max-file-size", Usage: "fail when the element-tree section exceeds `BYTES` (0 = unlimited)"},
		},
		Action: runCompile,
	}
}

func runCompile(ctx context.Context, cmd *cli.Command) error {
	e := env.FromContext(ctx)
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("compile requires SOURCE and OUTPUT arguments")
	}
	src, out := cmd.Args().Get(0), cmd.Args().Get(1)
	opts := optionsFromCommand(cmd, e)

	stats, err := kryc.Compile(src, out, opts)
	if err != nil {
		return fmt.Errorf("compile %s: %w", src, err)
	}
	for _, w := range stats.Warnings {
		e.Log.Warn(w.Message, zap.String("stage", w.Stage), zap.String("file", w.File))
	}
	e.Log.Info("compiled",
		zap.String("correlation_id", stats.CorrelationID),
		zap.String("output", out),
		zap.Int("elements", stats.ElementCount),
		zap.Int64("output_size", stats.OutputSize),
		zap.Int64("compile_time_ms", stats.CompileTimeMs),
	)
	return nil
}
