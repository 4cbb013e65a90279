package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/env"
	"github.com/kryonlabs/kryc/pkg/kryc"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "recompiles SOURCE whenever a .kry file in its directory changes",
		ArgsUsage: "SOURCE.kry OUTPUT.krb",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "optimize", Aliases: []string{"O"}, Value: 0, Usage: "optimization level (0-2)"},
			&cli.StringFlag{Name: "target", Usage: "target platform (desktop, mobile, web, embedded, universal)"},
			&cli.BoolFlag{Name: "embed-scripts", Usage: "embed referenced script bodies instead of external resource refs"},
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional include search `DIR`"},
		},
		Action: runWatch,
	}
}

// runWatch rebuilds on every change event for src until ctx is
// cancelled (the root command installs signal.NotifyContext, so
// Ctrl-C/SIGTERM stop the loop cleanly).
func runWatch(ctx context.Context, cmd *cli.Command) error {
	e := env.FromContext(ctx)
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("watch requires SOURCE and OUTPUT arguments")
	}
	src, out := cmd.Args().Get(0), cmd.Args().Get(1)
	opts := optionsFromCommand(cmd, e)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(src)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	rebuild := func() {
		runID := uuid.NewString()
		log := e.Log.With(zap.String("correlation_id", runID))
		stats, err := kryc.Compile(src, out, opts)
		if err != nil {
			log.Error("rebuild failed", zap.Error(err))
			return
		}
		log.Info("rebuilt",
			zap.String("output", out),
			zap.Int("elements", stats.ElementCount),
			zap.Int64("output_size", stats.OutputSize),
		)
	}

	e.Log.Info("watching", zap.String("dir", dir), zap.String("source", src))
	rebuild()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(ev.Name) != ".kry" {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.Log.Warn("watch error", zap.Error(err))
		}
	}
}
