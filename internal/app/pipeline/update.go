package pipeline

import (
	"tailsift/internal/app/linestore"
)

// UpdateType represents the type of view update
type UpdateType int

// Update type values
const (
	// Replace carries the complete recomputed view.
	Replace UpdateType = iota
	// Append carries only the lines matched by one incremental flush.
	Append
	// SourceError is a terminal notification; no further Appends follow
	// until Reset.
	SourceError
)

// Update is one ordered delivery to the consumer. Generation identifies the
// filter state that produced it; an Append older than the latest completed
// Replace is dropped before delivery, never after.
type Update struct {
	Type       UpdateType
	Lines      []linestore.Line
	Generation uint64
	Err        error
}

// String returns the update type name for logging
func (t UpdateType) String() string {
	switch t {
	case Replace:
		return "replace"
	case Append:
		return "append"
	case SourceError:
		return "source_error"
	default:
		return "unknown"
	}
}
