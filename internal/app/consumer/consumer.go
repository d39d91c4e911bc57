package consumer

import (
	"fmt"
	"io"
	"sync"

	"tailsift/internal/app/evaluate"
	"tailsift/internal/app/linestore"
	"tailsift/internal/app/pipeline"
)

// Separator is written between non-contiguous chunks of output
const Separator = "--"

// Consumer drains the pipeline's update channel on its own goroutine and
// renders the filtered view as plain text: one line per filtered line with
// its original number, a separator between non-contiguous chunks
type Consumer interface {
	Run(updates <-chan pipeline.Update)
	Wait()
	View() []linestore.Line
}

// consumer implements the Consumer interface
type consumer struct {
	w io.Writer

	mu       sync.Mutex
	view     []linestore.Line
	lastNum  int
	rendered bool
	done     chan struct{}
}

// New creates a consumer writing to w
func New(w io.Writer) Consumer {
	return &consumer{
		w:    w,
		done: make(chan struct{}),
	}
}

// Run drains updates until the channel closes
func (c *consumer) Run(updates <-chan pipeline.Update) {
	go func() {
		defer close(c.done)

		for u := range updates {
			c.apply(u)
		}
	}()
}

// Wait blocks until the update channel has closed
func (c *consumer) Wait() {
	<-c.done
}

// View returns a copy of the current filtered view
func (c *consumer) View() []linestore.Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]linestore.Line, len(c.view))
	copy(out, c.view)

	return out
}

// apply folds one update into the view and renders the delta
func (c *consumer) apply(u pipeline.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch u.Type {
	case pipeline.Replace:
		c.view = u.Lines
		c.lastNum = 0
		c.rendered = false

		c.render(u.Lines)
	case pipeline.Append:
		c.view = append(c.view, u.Lines...)
		c.render(u.Lines)
	case pipeline.SourceError:
		fmt.Fprintf(c.w, "! source error: %v\n", u.Err)
	}
}

// render writes lines, inserting a separator at every numbering gap
func (c *consumer) render(lines []linestore.Line) {
	for _, chunk := range evaluate.Chunks(lines) {
		if c.rendered && chunk[0].Number != c.lastNum+1 {
			fmt.Fprintln(c.w, Separator)
		}

		for _, line := range chunk {
			fmt.Fprintf(c.w, "%6d  %s\n", line.Number, line.Text)
		}

		c.lastNum = chunk[len(chunk)-1].Number
		c.rendered = true
	}
}
