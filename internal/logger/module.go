package logger

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
)

// Module wires slog logger for dependency injection and routes fx events through it.
var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) *slog.Logger { return New(cfg.Env) }),
	fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: l}
	}),
)
