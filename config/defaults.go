package config

import "time"

// Default runtime limits and guardrails for the xlquery server. They are
// referenced by internal/runtime and can be overridden through Load.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenWorkbooks      = 4
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
)

const (
	// Upload bridge
	DefaultUploadDir     = "/data/xlquery/chat/file"
	DefaultMaxToolRounds = 8
	DefaultLLMModel      = "gpt-4o"
)
