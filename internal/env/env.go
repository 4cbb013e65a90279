// Package env defines the shared program state threaded through
// context.Context across a CLI invocation.
package env

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kryonlabs/kryc/internal/config"
)

type envKey struct{}

// Env keeps everything a kryc invocation needs in one place, reachable
// from subcommand Action funcs via FromContext.
type Env struct {
	Cfg *config.Config
	Log *zap.Logger

	start time.Time
}

// New builds an Env from a loaded config and prepared logger.
func New(cfg *config.Config, log *zap.Logger) *Env {
	return &Env{Cfg: cfg, Log: log, start: time.Now()}
}

// WithEnv returns a context carrying e, retrievable with FromContext.
func WithEnv(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, envKey{}, e)
}

// FromContext returns the Env stored in ctx. Panics if one was never
// installed: every subcommand runs inside a root Before hook that
// installs it, so its absence means a programming error.
func FromContext(ctx context.Context) *Env {
	e, ok := ctx.Value(envKey{}).(*Env)
	if !ok {
		panic("env: no Env in context")
	}
	return e
}

// Uptime reports how long this invocation has been running.
func (e *Env) Uptime() time.Duration {
	return time.Since(e.start)
}

// Close flushes the logger on shutdown.
func (e *Env) Close() error {
	if e.Log != nil {
		return e.Log.Sync()
	}
	return nil
}
