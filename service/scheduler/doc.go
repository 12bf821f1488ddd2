// Package scheduler hosts the kernel's interrupt dispatch loop. A single
// goroutine consumes the interrupt queue and runs the three handlers (timer
// expiry, I/O syscall, I/O completion) one at a time; every handler ends by
// invoking the round-robin selector, which is therefore the single
// convergence point after any state change.
package scheduler
