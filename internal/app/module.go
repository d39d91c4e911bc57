package app

import (
	"go.uber.org/fx"

	"tailsift/internal/app/bus"
	"tailsift/internal/app/consumer"
	"tailsift/internal/app/linestore"
	"tailsift/internal/app/pipeline"
	"tailsift/internal/app/source"
	"tailsift/internal/config/logger"
)

var Module = fx.Options(
	logger.Module,
	bus.Module,
	linestore.Module,
	pipeline.Module,
	source.Module,
	consumer.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
