package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"tailsift/internal/app/errors"
	"tailsift/internal/config/logger"
)

// Resetter is implemented by handlers that can restart the view when the
// followed file is truncated
type Resetter interface {
	Reset()
}

// tail follows a file on disk, pushing appended lines as they are written
type tail struct {
	path    string
	matcher Matcher
	log     logger.Logger

	offset  int64
	partial []byte
}

// NewTail creates a source following the given path. A directory path is
// resolved to its first file matching the include/ignore patterns.
func NewTail(path string, matcher Matcher, log logger.Logger) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.ErrSourceUnavailable
	}

	if info.IsDir() {
		path, err = resolveFile(path, matcher)
		if err != nil {
			return nil, err
		}
	}

	return &tail{path: path, matcher: matcher, log: log}, nil
}

// resolveFile picks the first matching file in dir, in name order
func resolveFile(dir string, matcher Matcher) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.ErrSourceUnavailable
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if matcher == nil || matcher.Match(e.Name()) {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return "", errors.ErrNoSourceMatched
	}

	sort.Strings(names)

	return filepath.Join(dir, names[0]), nil
}

// Run reads the existing content, then follows writes until the context is
// cancelled or the file goes away. Truncation restarts the handler's view
// when it implements Resetter.
func (t *tail) Run(ctx context.Context, h Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		h.Err(err)
		return err
	}
	defer watcher.Close()

	// Watch the directory; editors often replace rather than append.
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		h.Err(err)
		return err
	}

	if err := t.drain(h); err != nil {
		h.Err(err)
		return err
	}

	t.log.Info().Str("path", t.path).Msg("Following file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Name != t.path {
				continue
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				h.Err(errors.ErrSourceUnavailable)
				return errors.ErrSourceUnavailable
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := t.drain(h); err != nil {
				h.Err(err)
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			t.log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// drain reads everything appended since the last offset and pushes complete
// lines; a trailing fragment waits for its newline
func (t *tail) drain(h Handler) error {
	f, err := os.Open(t.path)
	if err != nil {
		return errors.ErrSourceUnavailable
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.ErrSourceUnavailable
	}

	if info.Size() < t.offset {
		t.log.Info().Str("path", t.path).Msg("File truncated, restarting")

		t.offset = 0
		t.partial = nil

		if r, ok := h.(Resetter); ok {
			r.Reset()
		}
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return errors.ErrSourceUnavailable
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.ErrSourceUnavailable
	}

	t.offset += int64(len(data))

	buf := append(t.partial, data...)

	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}

		h.Line(string(bytes.TrimSuffix(buf[:idx], []byte("\r"))))
		buf = buf[idx+1:]
	}

	t.partial = append([]byte(nil), buf...)

	return nil
}
