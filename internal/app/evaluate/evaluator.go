package evaluate

import (
	"tailsift/internal/app/filter"
	"tailsift/internal/app/linestore"
)

// Run scans the snapshot once and returns every line matching the filter
// root plus contextLines neighbours on each side, ordered and deduplicated.
// Overlapping or touching windows merge into one contiguous run; the merge
// is a single forward pass with a monotonic low-water mark, O(n) in the
// snapshot length. A nil root matches every line.
func Run(snapshot []linestore.Line, root *filter.Node, contextLines int) []linestore.Line {
	return RunFrom(snapshot, root, contextLines, 0)
}

// RunFrom behaves like Run except that only lines numbered fromNumber or
// higher are match candidates; earlier lines appear in the result only as
// context. Incremental flushes use it to pull the context preceding a fresh
// match out of lines delivered in earlier flushes.
func RunFrom(snapshot []linestore.Line, root *filter.Node, contextLines, fromNumber int) []linestore.Line {
	if contextLines < 0 {
		contextLines = 0
	}

	out := make([]linestore.Line, 0)

	// next is the first index not yet emitted; it only moves forward, so a
	// window overlapping the previous one contributes only its new tail.
	next := 0

	for i := range snapshot {
		if snapshot[i].Number < fromNumber {
			continue
		}

		if !matches(root, snapshot[i].Text) {
			continue
		}

		lo := i - contextLines
		if lo < next {
			lo = next
		}

		hi := i + contextLines
		if hi > len(snapshot)-1 {
			hi = len(snapshot) - 1
		}

		for j := lo; j <= hi; j++ {
			out = append(out, snapshot[j])
		}

		next = hi + 1
	}

	return out
}

// Chunks splits an evaluation result into maximal contiguous runs of
// original line numbers. Consumers render a separator between chunks.
func Chunks(result []linestore.Line) [][]linestore.Line {
	if len(result) == 0 {
		return nil
	}

	chunks := make([][]linestore.Line, 0, 1)
	start := 0

	for i := 1; i < len(result); i++ {
		if result[i].Number != result[i-1].Number+1 {
			chunks = append(chunks, result[start:i])
			start = i
		}
	}

	return append(chunks, result[start:])
}

// matches evaluates one line, never letting a pathological line abort the
// rest of the scan.
func matches(root *filter.Node, text string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	return root.Matches(text)
}
