package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// Annotation and favorite writes are limited per client IP. The limit
	// only needs to absorb accidental double-clicks and runaway scripts.
	writeLimitRPS   = 5
	writeLimitBurst = 10
)
