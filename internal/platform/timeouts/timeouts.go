// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// Narrator caps a single narrator call when no timeout is configured.
const Narrator = 30 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 10 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight tool calls
// during graceful shutdown.
const Shutdown = 35 * time.Second

// TelemetryShutdown bounds the final span flush when a command exits.
const TelemetryShutdown = 5 * time.Second
