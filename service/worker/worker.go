package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/messaging"
)

// ensure Worker implements the kernel's handle capability
var _ pcb.Handle = (*Worker)(nil)

// Listener observes executed instructions; used for trace output and tests.
type Listener func(id, pc int)

// Worker simulates an independently running process executing a linear
// program. It stands in for a real OS process: the pause gate models
// SIGSTOP/SIGCONT, the two capacity-one channels model the pipes between the
// kernel and the process. On an I/O point the worker writes its request
// payload to the outbound channel, raises a syscall interrupt on the kernel
// queue and stays stopped until the kernel restores its context.
type Worker struct {
	id      int
	program Program
	queue   messaging.Queue[irq.Interrupt]

	resumeCh  chan int          // kernel -> worker: program counter to continue from
	requestCh chan *irq.Request // worker -> kernel: submitted request payload
	killCh    chan struct{}

	stepDelay time.Duration
	listener  Listener

	mu       sync.Mutex
	cond     *sync.Cond
	paused   bool
	killed   bool
	finished bool
}

// Option customises a Worker.
type Option func(*Worker)

// WithStepDelay sets the simulated duration of one instruction.
func WithStepDelay(delay time.Duration) Option {
	return func(w *Worker) {
		w.stepDelay = delay
	}
}

// WithListener registers an instruction listener.
func WithListener(listener Listener) Option {
	return func(w *Worker) {
		w.listener = listener
	}
}

// New creates a worker in the paused state so that the scheduler - not the
// worker itself - controls the first execution.
func New(id int, program Program, queue messaging.Queue[irq.Interrupt], options ...Option) *Worker {
	w := &Worker{
		id:        id,
		program:   program,
		queue:     queue,
		resumeCh:  make(chan int, 1),
		requestCh: make(chan *irq.Request, 1),
		killCh:    make(chan struct{}),
		paused:    true,
	}
	w.cond = sync.NewCond(&w.mu)
	for _, option := range options {
		option(w)
	}
	return w
}

// ID returns the worker index.
func (w *Worker) ID() int {
	return w.id
}

// Start launches the worker's instruction loop.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Pause suspends instruction execution at the next gate check.
func (w *Worker) Pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
}

// Resume lets a paused worker continue.
func (w *Worker) Resume() {
	w.mu.Lock()
	w.paused = false
	w.mu.Unlock()
	w.cond.Broadcast()
}

// SendContext delivers the program counter the worker must continue from. The
// channel has capacity one; a second undelivered context is a protocol
// violation.
func (w *Worker) SendContext(pc int) error {
	select {
	case w.resumeCh <- pc:
		return nil
	default:
		return fmt.Errorf("worker %d: context already pending", w.id)
	}
}

// ReceiveRequest drains the worker's outbound channel.
func (w *Worker) ReceiveRequest() (*irq.Request, bool) {
	select {
	case req := <-w.requestCh:
		return req, true
	default:
		return nil, false
	}
}

// Alive reports whether the worker can still execute instructions.
func (w *Worker) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.killed && !w.finished
}

// Kill terminates the worker permanently.
func (w *Worker) Kill() {
	w.mu.Lock()
	if w.killed {
		w.mu.Unlock()
		return
	}
	w.killed = true
	w.mu.Unlock()
	close(w.killCh)
	w.cond.Broadcast()
}

// gate blocks while the worker is paused; it returns false once killed.
func (w *Worker) gate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.paused && !w.killed {
		w.cond.Wait()
	}
	return !w.killed
}

func (w *Worker) run(ctx context.Context) {
	for pc := 0; pc < w.program.Steps; {
		if !w.gate() {
			return
		}
		w.execute(pc)

		if op, ok := w.program.IOPoints[pc]; ok {
			next, ok := w.syscall(ctx, pc, op)
			if !ok {
				return
			}
			pc = next
			continue
		}
		pc++
	}
	w.mu.Lock()
	w.finished = true
	w.mu.Unlock()
}

func (w *Worker) execute(pc int) {
	if w.listener != nil {
		w.listener(w.id, pc)
	}
	if w.stepDelay > 0 {
		time.Sleep(w.stepDelay)
	}
}

// syscall writes the request payload to the outbound channel, raises the
// syscall interrupt and stays stopped until the kernel sends the program
// counter to continue from.
func (w *Worker) syscall(ctx context.Context, pc int, op irq.Operation) (int, bool) {
	select {
	case w.requestCh <- &irq.Request{PC: pc, Op: op}:
	default:
		// one outstanding request per worker; a full channel means the
		// previous payload was never consumed
		return 0, false
	}

	interrupt := irq.NewSyscall(w.id)
	if err := w.queue.Publish(ctx, &interrupt); err != nil {
		return 0, false
	}

	select {
	case next := <-w.resumeCh:
		return next, true
	case <-w.killCh:
		return 0, false
	case <-ctx.Done():
		return 0, false
	}
}
