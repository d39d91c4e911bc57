package source

import (
	"os"

	"go.uber.org/fx"

	"tailsift/internal/config"
	"tailsift/internal/config/logger"
)

// Module provides the configured line source: a file tail when source.path
// is set, stdin otherwise
var Module = fx.Module("source",
	fx.Provide(func(cfg *config.Config, log logger.Logger) (Source, error) {
		componentLog := log.WithComponent("SOURCE")

		if cfg.Source.Path == "" {
			return NewReader(os.Stdin, componentLog), nil
		}

		matcher, err := NewMatcher(cfg.Source.Include, cfg.Source.Ignore)
		if err != nil {
			return nil, err
		}

		return NewTail(cfg.Source.Path, matcher, componentLog)
	}),
)
