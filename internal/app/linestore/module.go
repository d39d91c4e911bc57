package linestore

import "go.uber.org/fx"

// Module provides the line store and its dependencies
var Module = fx.Options(
	fx.Provide(New),
)
