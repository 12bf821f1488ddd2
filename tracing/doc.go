// Package tracing provides a thin wrapper around OpenTelemetry tracing so
// that the rest of the code-base can use a couple of helper functions
// (StartSpan, EndSpan) without being concerned with the underlying
// implementation.
package tracing
