package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrInvalidFlushInterval  = errors.New("pipeline flush_interval must be positive")
	ErrInvalidFlushThreshold = errors.New("pipeline flush_threshold must be positive")
	ErrInvalidDebounce       = errors.New("pipeline debounce must be positive")
	ErrInvalidContextLines   = errors.New("pipeline context_lines must not be negative")
	ErrInvalidUpdateBuffer   = errors.New("pipeline buffer must be positive")
	ErrInvalidMaxLines       = errors.New("store max_lines must be positive")

	ErrEmptyFilterValue   = errors.New("filter value must not be empty")
	ErrInvalidPattern     = errors.New("invalid regex pattern")
	ErrUnknownFilterKind  = errors.New("unknown filter kind")
	ErrMalformedFilterDoc = errors.New("malformed filter document")

	ErrSourceUnavailable = errors.New("line source unavailable")
	ErrNoSourceMatched   = errors.New("no file matched the source patterns")

	ErrStaleGeneration = errors.New("update superseded by newer generation")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
