package env

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/kryonlabs/kryc/internal/config"
)

// enableColorOutput reports whether stream is an interactive terminal,
// mirroring the pack's EnableColorOutput.
func enableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// NewLogger builds a zap.Logger from a LoggingConfig: a console core
// tuned to the requested level plus, when the file level is debug or
// normal, a teed file core. Scaled down from the pack's Prepare — no panic-log
// capture, no debug report archive, since a compiler CLI has no use
// for either.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if enableColorOutput(os.Stdout) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	var consoleCore zapcore.Core
	switch cfg.Console.Level {
	case "debug":
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel)
	case "normal":
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.InfoLevel)
	default:
		consoleCore = zapcore.NewNopCore()
	}

	var fileCore zapcore.Core
	switch cfg.File.Level {
	case "debug", "normal":
		f, err := os.OpenFile(cfg.File.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		level := zap.InfoLevel
		if cfg.File.Level == "debug" {
			level = zap.DebugLevel
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), level)
	default:
		fileCore = zapcore.NewNopCore()
	}

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller()).Named("kryc"), nil
}
