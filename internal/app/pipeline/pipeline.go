package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"tailsift/internal/app/bus"
	"tailsift/internal/app/errors"
	"tailsift/internal/app/evaluate"
	"tailsift/internal/app/filter"
	"tailsift/internal/app/linestore"
	"tailsift/internal/config"
	"tailsift/internal/config/logger"
)

// Pipeline coordinates the incremental-append lane and the debounced
// full-reflow lane over one line store, emitting a single ordered stream of
// updates to one consumer.
//
// The filter tree is owned by an external editor; the pipeline clones the
// root at flush or reflow execution time, so edits mid-flight apply to the
// next generation, never retroactively. NewLine is a non-blocking enqueue;
// all matching runs on one background worker goroutine.
type Pipeline interface {
	NewLine(text string)
	SetFilter(root *filter.Node)
	FilterChanged()
	SetContextLines(n int)
	SourceFailed(err error)
	Reset()
	Updates() <-chan Update
	Close()
}

type taskKind int

const (
	taskFlush taskKind = iota
	taskReflow
	taskReset
	taskSourceErr
)

type task struct {
	kind taskKind
	err  error
}

// pipeline implements the Pipeline interface
type pipeline struct {
	store linestore.Store
	bus   bus.Bus
	log   logger.Logger
	clock Clock

	flushInterval  time.Duration
	flushThreshold int

	mu            sync.Mutex
	root          *filter.Node
	contextLines  int
	generation    uint64
	lastReplace   uint64
	pending       []string
	failed        bool
	closed        bool
	changePending bool
	flushTimer    Timer
	incremental   *fsm.FSM
	reflow        *fsm.FSM
	debouncer     Debouncer

	tasks      chan task
	updates    chan Update
	closing    chan struct{}
	workerDone chan struct{}
}

// New creates a new pipeline using the wall clock
func New(cfg *config.Config, store linestore.Store, b bus.Bus, log logger.Logger) Pipeline {
	return NewWithClock(cfg, store, b, log, NewClock())
}

// NewWithClock creates a new pipeline with a substitutable clock
func NewWithClock(cfg *config.Config, store linestore.Store, b bus.Bus, log logger.Logger, clock Clock) Pipeline {
	p := &pipeline{
		store:          store,
		bus:            b,
		log:            log,
		clock:          clock,
		flushInterval:  cfg.Pipeline.FlushInterval,
		flushThreshold: cfg.Pipeline.FlushThreshold,
		contextLines:   cfg.Pipeline.ContextLines,
		tasks:          make(chan task, cfg.Pipeline.Buffer),
		updates:        make(chan Update, cfg.Pipeline.Buffer),
		closing:        make(chan struct{}),
		workerDone:     make(chan struct{}),
	}

	p.debouncer = NewDebouncer(clock, cfg.Pipeline.Debounce, p.onQuiet)
	p.incremental = newIncrementalLane(p)
	p.reflow = newReflowLane(p)

	go p.worker()

	return p
}

// NewLine enqueues a line from the producer without waiting on evaluation.
// Lines arriving after a source failure are dropped until Reset.
func (p *pipeline) NewLine(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.failed {
		return
	}

	p.pending = append(p.pending, text)

	if p.incremental.Current() == LaneIdle {
		p.event(p.incremental, EventLine)
	}

	if p.incremental.Current() == LaneBuffering && len(p.pending) >= p.flushThreshold {
		p.event(p.incremental, EventFlush)
	}
}

// SetFilter installs a new filter root. A nil root matches every line.
// The caller fires FilterChanged once editing is complete.
func (p *pipeline) SetFilter(root *filter.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.root = root
}

// FilterChanged (re-)arms the debounced full reflow. Rapid calls coalesce
// into one reflow using the filter state read after the last call.
func (p *pipeline) FilterChanged() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	switch p.reflow.Current() {
	case LaneIdle:
		p.event(p.reflow, EventChange)
	case LaneDebouncing:
		p.debouncer.Trigger()
	case LaneReflowing:
		p.changePending = true
	}
}

// SetContextLines updates the context-line count for subsequent evaluations.
// The caller fires FilterChanged to make the change take effect.
func (p *pipeline) SetContextLines(n int) {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.contextLines = n
}

// SourceFailed forwards an ingestion failure once as a terminal
// notification; the incremental lane stops until Reset
func (p *pipeline) SourceFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.failed {
		return
	}

	p.failed = true
	p.submitTask(task{kind: taskSourceErr, err: err})
}

// Reset discards buffered lines, clears the store, bumps the generation and
// emits an empty Replace; a reflow in flight against the pre-reset
// generation is discarded on completion
func (p *pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.pending = nil
	p.failed = false
	p.submitTask(task{kind: taskReset})
}

// Updates returns the single ordered delivery channel
func (p *pipeline) Updates() <-chan Update {
	return p.updates
}

// Close stops both lanes, flushes any still-buffered lines and closes the
// update channel; end-of-stream output never depends on the flush timer
// having fired
func (p *pipeline) Close() {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	p.stopFlushTimer()
	p.debouncer.Stop()
	close(p.tasks)

	p.mu.Unlock()

	<-p.workerDone
	close(p.closing)

	p.mu.Lock()
	pending := len(p.pending) > 0
	p.mu.Unlock()

	// The worker is gone, so the final drain keeps the single-appender
	// discipline.
	if pending {
		p.doFlush()
	}

	close(p.updates)
}

// worker executes evaluation tasks sequentially; it is the only goroutine
// that appends to the store and the only one that delivers updates, which
// is what keeps the output stream ordered.
func (p *pipeline) worker() {
	defer close(p.workerDone)

	for t := range p.tasks {
		switch t.kind {
		case taskFlush:
			p.doFlush()
		case taskReflow:
			p.doReflow()
		case taskReset:
			p.doReset()
		case taskSourceErr:
			p.doSourceError(t.err)
		}
	}
}

// doFlush appends the buffered lines to the store, evaluates them against
// the filter root read now (not at buffer start) and emits the matches as
// one Append update. Context preceding a match is re-fetched from the store,
// so a window may reach back into lines flushed earlier; windows already
// delivered are never retroactively widened, the debounced reflow
// canonicalizes the view.
func (p *pipeline) doFlush() {
	p.mu.Lock()
	texts := p.pending
	p.pending = nil
	root := p.root.Clone()
	contextLines := p.contextLines
	gen := p.generation
	p.mu.Unlock()

	batch := make([]linestore.Line, 0, len(texts))
	for _, text := range texts {
		num := p.store.Append(text)
		batch = append(batch, linestore.Line{Number: num, Text: text})
	}

	var matched []linestore.Line
	if contextLines > 0 && len(batch) > 0 {
		window := p.store.Tail(len(batch) + contextLines)
		matched = evaluate.RunFrom(window, root, contextLines, batch[0].Number)
	} else {
		matched = evaluate.Run(batch, root, contextLines)
	}

	p.mu.Lock()
	stale := gen < p.lastReplace
	p.mu.Unlock()

	if stale {
		p.log.Debug().Err(errors.ErrStaleGeneration).Uint64("generation", gen).Msg("Dropping superseded append")
	} else if len(matched) > 0 {
		p.deliver(Update{Type: Append, Lines: matched, Generation: gen})
	}

	p.bus.Publish(bus.Event{
		Type: bus.EventFlushComplete,
		Data: bus.FlushCompleteData{Generation: gen, Buffered: len(batch), Matched: len(matched)},
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	// The final drain runs outside the lane cycle; only a worker flush has
	// a flushing state to leave.
	if p.incremental.Current() == LaneFlushing {
		p.event(p.incremental, EventFlushed)
	}

	// Lines that arrived mid-flush start the next buffering window.
	if len(p.pending) > 0 && !p.closed {
		p.event(p.incremental, EventLine)

		if len(p.pending) >= p.flushThreshold {
			p.event(p.incremental, EventFlush)
		}
	}
}

// doReflow recomputes the complete view against a fresh snapshot and the
// filter root read now, under a newly incremented generation
func (p *pipeline) doReflow() {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	root := p.root.Clone()
	contextLines := p.contextLines
	p.mu.Unlock()

	snapshot := p.store.Snapshot()
	start := time.Now()
	result := evaluate.Run(snapshot, root, contextLines)

	p.mu.Lock()
	stale := gen < p.lastReplace
	if !stale {
		p.lastReplace = gen
	}
	p.mu.Unlock()

	if stale {
		p.log.Debug().Err(errors.ErrStaleGeneration).Uint64("generation", gen).Msg("Discarding superseded reflow")
	} else {
		p.deliver(Update{Type: Replace, Lines: result, Generation: gen})
		p.bus.Publish(bus.Event{
			Type: bus.EventReflowComplete,
			Data: bus.ReflowCompleteData{
				Generation: gen,
				Matched:    len(result),
				Scanned:    len(snapshot),
				Elapsed:    time.Since(start),
			},
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.event(p.reflow, EventDone)

	if p.changePending && !p.closed {
		p.changePending = false
		p.event(p.reflow, EventChange)
	}
}

// doReset clears the store and emits an empty Replace under a new generation
func (p *pipeline) doReset() {
	p.store.Reset()

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.lastReplace = gen
	p.mu.Unlock()

	p.deliver(Update{Type: Replace, Lines: []linestore.Line{}, Generation: gen})
	p.bus.Publish(bus.Event{
		Type:     bus.EventStoreReset,
		Data:     bus.StoreResetData{Generation: gen},
		Critical: true,
	})
}

// doSourceError forwards the terminal source notification
func (p *pipeline) doSourceError(err error) {
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()

	p.log.Warn().Err(err).Msg("Line source failed")
	p.deliver(Update{Type: SourceError, Err: err, Generation: gen})
	p.bus.Publish(bus.Event{
		Type:     bus.EventSourceFailed,
		Data:     bus.SourceFailedData{Error: err},
		Critical: true,
	})
}

// deliver sends one update to the consumer. The buffered channel is tried
// first so a delivery racing Close still lands; only a consumer that stopped
// draining a full buffer loses the update, never wedging the sender.
func (p *pipeline) deliver(u Update) {
	select {
	case p.updates <- u:
		return
	default:
	}

	select {
	case p.updates <- u:
	case <-p.closing:
	}
}

// event fires a lane transition; the caller holds p.mu
func (p *pipeline) event(machine *fsm.FSM, name string) {
	if err := machine.Event(context.Background(), name); err != nil {
		p.log.Debug().Err(err).Str("event", name).Msg("Lane transition rejected")
	}
}

// submit enqueues a task kind with no payload; the caller holds p.mu
func (p *pipeline) submit(kind taskKind) {
	p.submitTask(task{kind: kind})
}

// submitTask enqueues work for the worker; the caller holds p.mu. The lane
// machines allow at most one flush and one reflow outstanding, so the queue
// only fills under pathological Reset spam — excess resets are dropped, an
// earlier queued reset covers them.
func (p *pipeline) submitTask(t task) {
	select {
	case p.tasks <- t:
	default:
		p.log.Warn().Int("kind", int(t.kind)).Msg("Task queue full, dropping task")
	}
}

// onFlushTimer fires when the buffering window elapses
func (p *pipeline) onFlushTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if p.incremental.Current() == LaneBuffering {
		p.event(p.incremental, EventFlush)
	}
}

// onQuiet fires when the debounce quiet window elapses
func (p *pipeline) onQuiet() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if p.reflow.Current() == LaneDebouncing {
		p.event(p.reflow, EventQuiet)
	}
}

// armFlushTimer starts the buffering window; the caller holds p.mu
func (p *pipeline) armFlushTimer() {
	p.flushTimer = p.clock.AfterFunc(p.flushInterval, p.onFlushTimer)
}

// stopFlushTimer cancels a pending buffering window; the caller holds p.mu
func (p *pipeline) stopFlushTimer() {
	if p.flushTimer != nil {
		p.flushTimer.Stop()
		p.flushTimer = nil
	}
}
