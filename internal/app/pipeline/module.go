package pipeline

import (
	"go.uber.org/fx"

	"tailsift/internal/app/bus"
	"tailsift/internal/app/linestore"
	"tailsift/internal/config"
	"tailsift/internal/config/logger"
)

// Module provides the pipeline for dependency injection
var Module = fx.Module("pipeline",
	fx.Provide(func(cfg *config.Config, store linestore.Store, b bus.Bus, log logger.Logger) Pipeline {
		return New(cfg, store, b, log.WithComponent("PIPELINE"))
	}),
)
