package pipeline

import (
	"context"

	"github.com/looplab/fsm"
)

// Incremental lane states
const (
	LaneIdle      = "idle"
	LaneBuffering = "buffering"
	LaneFlushing  = "flushing"
)

// Reflow lane states
const (
	LaneDebouncing = "debouncing"
	LaneReflowing  = "reflowing"
)

// Lane events
const (
	EventLine    = "line"
	EventFlush   = "flush"
	EventFlushed = "flushed"
	EventChange  = "change"
	EventQuiet   = "quiet"
	EventDone    = "done"
)

// newIncrementalLane creates the incremental lane state machine:
// idle → buffering (first buffered line, arms the flush timer) →
// flushing (timer or threshold) → idle.
func newIncrementalLane(p *pipeline) *fsm.FSM {
	return fsm.NewFSM(
		LaneIdle,
		fsm.Events{
			{Name: EventLine, Src: []string{LaneIdle}, Dst: LaneBuffering},
			{Name: EventFlush, Src: []string{LaneBuffering}, Dst: LaneFlushing},
			{Name: EventFlushed, Src: []string{LaneFlushing}, Dst: LaneIdle},
		},
		fsm.Callbacks{
			"enter_" + LaneBuffering: func(ctx context.Context, e *fsm.Event) {
				p.armFlushTimer()
			},
			"enter_" + LaneFlushing: func(ctx context.Context, e *fsm.Event) {
				p.stopFlushTimer()
				p.submit(taskFlush)
			},
		},
	)
}

// newReflowLane creates the full-reflow lane state machine:
// idle → debouncing (filter changed) → reflowing (quiet window elapsed) →
// idle.
func newReflowLane(p *pipeline) *fsm.FSM {
	return fsm.NewFSM(
		LaneIdle,
		fsm.Events{
			{Name: EventChange, Src: []string{LaneIdle}, Dst: LaneDebouncing},
			{Name: EventQuiet, Src: []string{LaneDebouncing}, Dst: LaneReflowing},
			{Name: EventDone, Src: []string{LaneReflowing}, Dst: LaneIdle},
		},
		fsm.Callbacks{
			"enter_" + LaneDebouncing: func(ctx context.Context, e *fsm.Event) {
				p.debouncer.Trigger()
			},
			"enter_" + LaneReflowing: func(ctx context.Context, e *fsm.Event) {
				p.submit(taskReflow)
			},
		},
	)
}
