package source

//go:generate mockgen -source=source.go -destination=source_mock.go -package=source

import (
	"bufio"
	"context"
	"io"

	"tailsift/internal/config/logger"
)

// Handler receives the ordered line stream from a source. Lines arrive
// newline-free. Err is called at most once, as a terminal event; EOF ends
// the stream without an Err call.
type Handler interface {
	Line(text string)
	Err(err error)
}

// Source pushes an ordered sequence of text lines to a handler. Run blocks
// until end-of-stream, a hard error (reported through the handler) or
// context cancellation.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// reader streams lines from an io.Reader, for stdin and pipes
type reader struct {
	r   io.Reader
	log logger.Logger
}

// NewReader creates a source reading newline-delimited lines from r
func NewReader(r io.Reader, log logger.Logger) Source {
	return &reader{r: r, log: log}
}

// Run scans r line by line until EOF or a read error
func (s *reader) Run(ctx context.Context, h Handler) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h.Line(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		h.Err(err)
		return err
	}

	s.log.Debug().Msg("Reader source reached end of stream")

	return nil
}
