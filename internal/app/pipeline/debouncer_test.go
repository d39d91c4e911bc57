package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Debouncer_CoalescesRapidTriggers(t *testing.T) {
	var (
		mu        sync.Mutex
		callCount int
	)

	d := NewDebouncer(NewClock(), 50*time.Millisecond, func() {
		mu.Lock()
		defer mu.Unlock()

		callCount++
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, callCount)
	mu.Unlock()
}

func Test_Debouncer_Stop(t *testing.T) {
	var called bool

	d := NewDebouncer(NewClock(), 50*time.Millisecond, func() {
		called = true
	})

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	assert.False(t, called)
}

func Test_Debouncer_StopPreventsNewTriggers(t *testing.T) {
	var called bool

	d := NewDebouncer(NewClock(), 50*time.Millisecond, func() {
		called = true
	})

	d.Stop()
	d.Trigger()

	time.Sleep(100 * time.Millisecond)

	assert.False(t, called)
}

func Test_Debouncer_FiresAgainAfterCallback(t *testing.T) {
	var (
		mu        sync.Mutex
		callCount int
	)

	d := NewDebouncer(NewClock(), 20*time.Millisecond, func() {
		mu.Lock()
		defer mu.Unlock()

		callCount++
	})
	defer d.Stop()

	d.Trigger()
	time.Sleep(60 * time.Millisecond)

	d.Trigger()
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, callCount)
	mu.Unlock()
}
