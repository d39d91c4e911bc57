package consumer

import (
	"os"

	"go.uber.org/fx"
)

// Module provides the stdout consumer for dependency injection
var Module = fx.Module("consumer",
	fx.Provide(func() Consumer {
		return New(os.Stdout)
	}),
)
