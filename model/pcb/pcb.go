package pcb

import (
	"sync"
	"time"

	"github.com/viant/schedsim/internal/clock"
	"github.com/viant/schedsim/model/irq"
)

// Worker state constants
const (
	StateReady   = "ready"
	StateRunning = "running"
	StateBlocked = "blocked"
)

// Handle is the capability the kernel holds over one worker. The concrete
// mechanism (OS signals, sockets, in-process simulation) is an implementation
// choice behind this interface; the kernel has unilateral control over the
// worker's execution regardless of what the worker does internally.
type Handle interface {
	// Pause suspends instruction execution; idempotent.
	Pause()

	// Resume lets a paused worker continue; idempotent.
	Resume()

	// SendContext delivers the program counter the worker must continue from.
	// It must be called before Resume so the worker never reads a stale value.
	SendContext(pc int) error

	// ReceiveRequest drains the worker's outbound channel. The second return
	// value is false when no payload is available despite a notification.
	ReceiveRequest() (*irq.Request, bool)

	// Alive reports whether the worker can still execute instructions.
	Alive() bool

	// Kill terminates the worker permanently.
	Kill()
}

// Entry is the scheduler's bookkeeping record for one worker.
type Entry struct {
	ID           int           `json:"id"`
	State        string        `json:"state"`
	IOPending    bool          `json:"ioPending"`
	SavedPC      int           `json:"savedPC"`
	SavedPCValid bool          `json:"savedPCValid"`
	SavedOp      irq.Operation `json:"savedOp,omitempty"` // diagnostics only
	UpdatedAt    time.Time     `json:"updatedAt"`

	Handle Handle `json:"-"`

	mu sync.RWMutex
}

// NewEntry creates a ready entry bound to a worker handle.
func NewEntry(id int, handle Handle) *Entry {
	return &Entry{
		ID:        id,
		State:     StateReady,
		Handle:    handle,
		UpdatedAt: clock.Now(),
	}
}

// GetState returns the entry state.
func (e *Entry) GetState() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.State
}

// SetState updates the entry state.
func (e *Entry) SetState(state string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.State = state
	e.UpdatedAt = clock.Now()
}

// MarkBlocked transitions the entry to blocked with an outstanding request.
func (e *Entry) MarkBlocked() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.State = StateBlocked
	e.IOPending = true
	e.UpdatedAt = clock.Now()
}

// MarkReady transitions the entry back to ready, clearing any outstanding
// request flag.
func (e *Entry) MarkReady() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.State = StateReady
	e.IOPending = false
	e.UpdatedAt = clock.Now()
}

// HasIOPending reports whether the entry has an outstanding device request.
func (e *Entry) HasIOPending() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.IOPending
}

// SaveContext records the program counter and operation captured at the moment
// of an I/O request. The saved counter stays valid until consumed.
func (e *Entry) SaveContext(req *irq.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SavedPC = req.PC
	e.SavedOp = req.Op
	e.SavedPCValid = true
	e.UpdatedAt = clock.Now()
}

// ConsumeContext returns the saved program counter and invalidates it so that
// the same context is never restored twice. The second return value is false
// when no valid context exists.
func (e *Entry) ConsumeContext() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.SavedPCValid {
		return 0, false
	}
	e.SavedPCValid = false
	return e.SavedPC, true
}

// Snapshot returns a copy of the entry without its mutex, safe to inspect
// while the dispatcher keeps mutating the original.
func (e *Entry) Snapshot() Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Entry{
		ID:           e.ID,
		State:        e.State,
		IOPending:    e.IOPending,
		SavedPC:      e.SavedPC,
		SavedPCValid: e.SavedPCValid,
		SavedOp:      e.SavedOp,
		UpdatedAt:    e.UpdatedAt,
	}
}
