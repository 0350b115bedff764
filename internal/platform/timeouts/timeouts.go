// Package timeouts defines shared timeout constants used across processes.
package timeouts

import "time"

// GRPCHealthWait caps how long a client waits for the content readiness
// endpoint to report SERVING.
const GRPCHealthWait = 30 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// OTelShutdown limits how long pending spans are flushed at exit.
const OTelShutdown = 5 * time.Second
