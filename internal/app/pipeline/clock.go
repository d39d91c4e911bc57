package pipeline

import (
	"time"
)

// Timer is a stoppable pending callback
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks; substitutable so lane timing is testable
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// NewClock returns the wall clock
func NewClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
