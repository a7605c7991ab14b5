package bootstrap

import (
	"log/slog"

	"techpoints/internal/handler/middleware"
	"techpoints/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewRequestLogger,
		NewLogger,
	),
)

func NewRequestLogger(cfg config.Config) *middleware.Logger {
	return middleware.NewLogger(cfg.Log)
}

func NewLogger(logger *middleware.Logger) *slog.Logger {
	return logger.Slog()
}
