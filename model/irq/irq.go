package irq

import (
	"time"

	"github.com/viant/schedsim/internal/clock"
)

// Kind identifies an interrupt category.
type Kind string

const (
	// KindTimer marks the end of a time slice.
	KindTimer Kind = "timer"

	// KindSyscall signals that a worker has submitted a blocking I/O request.
	KindSyscall Kind = "syscall"

	// KindIOComplete signals that the in-service device operation finished.
	KindIOComplete Kind = "ioComplete"
)

// NoWorker is used as the Worker value for interrupts that do not originate
// from a specific worker (timer, I/O completion).
const NoWorker = -1

// Interrupt is the payload carried on the kernel's notification queue. All
// asynchronous events - timer ticks, syscalls, device completions - are
// delivered as Interrupt values so that a single dispatcher can serialize them.
type Interrupt struct {
	Kind      Kind      `json:"kind"`
	Worker    int       `json:"worker"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTimer returns a time-slice expiry interrupt.
func NewTimer() Interrupt {
	return Interrupt{Kind: KindTimer, Worker: NoWorker, CreatedAt: clock.Now()}
}

// NewSyscall returns an I/O-request interrupt originating from a worker.
func NewSyscall(worker int) Interrupt {
	return Interrupt{Kind: KindSyscall, Worker: worker, CreatedAt: clock.Now()}
}

// NewIOComplete returns a device-completion interrupt.
func NewIOComplete() Interrupt {
	return Interrupt{Kind: KindIOComplete, Worker: NoWorker, CreatedAt: clock.Now()}
}
