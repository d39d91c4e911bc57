package bus

import (
	"go.uber.org/fx"

	"tailsift/internal/config"
)

// Module provides the event bus for dependency injection
var Module = fx.Module("bus",
	fx.Provide(func(cfg *config.Config) Bus {
		return New(cfg.Pipeline.Buffer)
	}),
)
