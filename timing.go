// FILE: twconfig/timing.go
package twconfig

import "time"

// Timing constants for file watching.
const (
	MinDebounce          = 10 * time.Millisecond  // Hard floor for change coalescence
	DefaultDebounce      = 500 * time.Millisecond // File change coalescence period
	DefaultReloadTimeout = 5 * time.Second        // Maximum duration for reload operations
	ShutdownTimeout      = 2 * time.Second        // Graceful watcher termination window
)

// DefaultMaxSubscribers prevents resource exhaustion through Subscribe.
const DefaultMaxSubscribers = 100

// subscriberBuffer is the per-subscriber channel capacity. Slow subscribers miss
// intermediate snapshots, never the publisher.
const subscriberBuffer = 4
