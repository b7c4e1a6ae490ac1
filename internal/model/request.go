package model

import "time"

// Defaults applied when a request leaves a budget unset.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultMemoryLimit   = 128 * 1024 * 1024
	DefaultMaxOutputSize = 1024 * 1024
)

// ExecutionRequest describes one sandboxed run of untrusted source code.
// It is immutable once built; WithDefaults returns a filled copy instead
// of mutating in place.
type ExecutionRequest struct {
	Code     string
	Language string
	Stdin    string
	Timeout  time.Duration
	// MemoryLimit in bytes.
	MemoryLimit int64
	// MaxOutputSize bounds captured stdout and stderr, each, in bytes.
	MaxOutputSize int64
}

func (r ExecutionRequest) WithDefaults() ExecutionRequest {
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.MemoryLimit <= 0 {
		r.MemoryLimit = DefaultMemoryLimit
	}
	if r.MaxOutputSize <= 0 {
		r.MaxOutputSize = DefaultMaxOutputSize
	}
	return r
}
