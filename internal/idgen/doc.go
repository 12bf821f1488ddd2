// Package idgen issues opaque identifiers for simulation runs. Callers must
// not rely on the exact format; the generator is an `internal` detail so it
// can change or be stubbed without breaking anyone.
package idgen
