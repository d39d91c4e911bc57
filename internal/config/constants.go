package config

import "time"

// app constants
const (
	LogLevel  = "info"
	LogFormat = "console"

	Version = "0.3.0"
)

// pipeline constants
const (
	FlushInterval  = 100 * time.Millisecond
	FlushThreshold = 200
	Debounce       = 150 * time.Millisecond
	ContextLines   = 0
	UpdateBuffer   = 64
)

// store constants
const (
	MaxLines = 100000
)

// source constants
const (
	ConfigFile = "tailsift.yaml"
	EnvPrefix  = "TAILSIFT"
)
