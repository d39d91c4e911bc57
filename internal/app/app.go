package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"tailsift/internal/app/bus"
	"tailsift/internal/app/cli"
	"tailsift/internal/app/consumer"
	"tailsift/internal/app/errors"
	"tailsift/internal/app/pipeline"
	"tailsift/internal/app/source"
	"tailsift/internal/config"
	"tailsift/internal/config/logger"
)

// App wires the line source, pipeline and consumer into one run loop
type App struct {
	cfg  *config.Config
	opts *cli.Options
	src  source.Source
	pipe pipeline.Pipeline
	cons consumer.Consumer
	bus  bus.Bus
	log  logger.Logger
	done chan struct{}
}

// NewApp creates a new application instance with its dependencies
func NewApp(
	cfg *config.Config,
	opts *cli.Options,
	src source.Source,
	pipe pipeline.Pipeline,
	cons consumer.Consumer,
	b bus.Bus,
	log logger.Logger,
) *App {
	return &App{
		cfg:  cfg,
		opts: opts,
		src:  src,
		pipe: pipe,
		cons: cons,
		bus:  b,
		log:  log.WithComponent("APP"),
		done: make(chan struct{}),
	}
}

// pipelineHandler bridges the line source to the pipeline
type pipelineHandler struct {
	pipe pipeline.Pipeline
}

func (h *pipelineHandler) Line(text string) { h.pipe.NewLine(text) }
func (h *pipelineHandler) Err(err error)    { h.pipe.SourceFailed(err) }
func (h *pipelineHandler) Reset()           { h.pipe.Reset() }

// Run executes the application until end-of-stream or an interrupt
func (a *App) Run() error {
	defer close(a.done)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		a.logEvents(a.bus.Subscribe(ctx))
	}()

	root, err := cli.BuildFilter(a.cfg, a.opts)
	if err != nil {
		a.log.Error().Err(err).Msg("Invalid filter definition")
		return err
	}

	a.pipe.SetFilter(root)
	a.pipe.SetContextLines(a.cfg.Pipeline.ContextLines)
	a.bus.Publish(bus.Event{Type: bus.EventFilterApplied})
	a.cons.Run(a.pipe.Updates())

	// Establish the initial view under generation 1.
	a.pipe.FilterChanged()

	a.bus.Publish(bus.Event{Type: bus.EventSourceStarted, Data: bus.SourceStartedData{Name: a.cfg.Source.Path}})

	err = a.src.Run(ctx, &pipelineHandler{pipe: a.pipe})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Warn().Err(err).Msg("Source terminated")
	}

	// Close drains lines still buffered in the pipeline.
	a.pipe.Close()
	a.cons.Wait()
	a.bus.Publish(bus.Event{Type: bus.EventSourceStopped, Data: bus.SourceStoppedData{Name: a.cfg.Source.Path}})
	a.bus.Close()
	<-eventsDone

	return nil
}

// logEvents drains engine events into the structured log until the bus
// closes or the subscription's context ends
func (a *App) logEvents(events <-chan bus.Event) {
	for ev := range events {
		switch data := ev.Data.(type) {
		case bus.FlushCompleteData:
			a.log.Debug().
				Uint64("generation", data.Generation).
				Int("buffered", data.Buffered).
				Int("matched", data.Matched).
				Msg("Flush complete")
		case bus.ReflowCompleteData:
			a.log.Debug().
				Uint64("generation", data.Generation).
				Int("scanned", data.Scanned).
				Int("matched", data.Matched).
				Dur("elapsed", data.Elapsed).
				Msg("Reflow complete")
		case bus.SourceFailedData:
			a.log.Warn().Err(data.Error).Msg("Source failed")
		case bus.StoreResetData:
			a.log.Info().Uint64("generation", data.Generation).Msg("Store reset")
		default:
			a.log.Debug().Str("event", string(ev.Type)).Msg("Engine event")
		}
	}
}

// Register registers the application's lifecycle hooks with fx
func Register(lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				_ = app.Run()
				_ = shutdowner.Shutdown()
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-app.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
