package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/viant/schedsim/internal/clock"
	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/messaging"
	"github.com/viant/schedsim/tracing"
)

// None marks the absence of a worker index (no current runner, no serviced
// worker).
const None = -1

// Device is the slice of the interrupt source contract the scheduler needs:
// asking it to begin device service for one worker.
type Device interface {
	Begin(ctx context.Context, worker int) error
}

// Service owns all scheduling state: the process table, the blocked queue and
// the device bookkeeping. All mutations happen on the dispatcher goroutine;
// accessors take the service mutex so tests and trace consumers can observe
// consistent state.
type Service struct {
	table   *pcb.Table
	queue   messaging.Queue[irq.Interrupt]
	device  Device
	blocked *blockedQueue

	mu             sync.Mutex
	current        int // index of the running worker, or None
	cursor         int // scan anchor: last scheduling position
	ioInProgress   bool
	servicedWorker int // worker currently in device service, or None

	shutdownCh chan struct{}
	cancelFn   context.CancelFunc
	workerWg   sync.WaitGroup
	once       sync.Once
}

// New creates a scheduler service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		current:        None,
		cursor:         None,
		servicedWorker: None,
		shutdownCh:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.table == nil {
		return nil, fmt.Errorf("process table is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("interrupt queue is required")
	}
	if s.device == nil {
		return nil, fmt.Errorf("device notifier is required")
	}
	s.blocked = newBlockedQueue(s.table.Len())
	return s, nil
}

// Start launches the dispatcher goroutine and performs the first scheduling
// decision so that execution begins under the scheduler's control.
func (s *Service) Start(ctx context.Context) error {
	dispatchCtx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel

	s.mu.Lock()
	s.schedule(ctx)
	s.mu.Unlock()

	s.workerWg.Add(1)
	go s.dispatch(dispatchCtx)
	return nil
}

// dispatch consumes interrupts one at a time; it is the kernel's only logical
// thread of control.
func (s *Service) dispatch(ctx context.Context) {
	defer s.workerWg.Done()

	for {
		select {
		case <-s.shutdownCh:
			return
		default:
		}

		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := s.Handle(ctx, *msg.T()); pErr != nil {
			log.Printf("scheduler: failed to handle interrupt: %v", pErr)
			_ = msg.Nack(pErr)
			continue
		}
		_ = msg.Ack()
	}
}

// Handle processes a single interrupt. It is exported so tests can drive the
// handlers deterministically without the dispatcher goroutine; production
// code must only call it from one goroutine.
func (s *Service) Handle(ctx context.Context, interrupt irq.Interrupt) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("scheduler.Handle %s", interrupt.Kind), "CONSUMER")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{
		"irq.kind":  string(interrupt.Kind),
		"irq.delay": clock.Since(interrupt.CreatedAt).String(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	switch interrupt.Kind {
	case irq.KindTimer:
		s.handleTimer(ctx)
	case irq.KindSyscall:
		span.WithAttributes(map[string]string{"irq.worker": fmt.Sprintf("%d", interrupt.Worker)})
		s.handleSyscall(ctx, interrupt.Worker)
	case irq.KindIOComplete:
		s.handleIOComplete(ctx)
	default:
		err = fmt.Errorf("unknown interrupt kind: %q", interrupt.Kind)
	}
	return err
}

// handleTimer implements time-slice preemption: the timer touches no state of
// its own, it only re-runs the selector.
func (s *Service) handleTimer(ctx context.Context) {
	s.schedule(ctx)
}

// handleSyscall records the calling worker's context, blocks it, queues it
// for device service and starts the device when idle.
func (s *Service) handleSyscall(ctx context.Context, worker int) {
	entry := s.table.Entry(worker)
	if entry == nil {
		log.Printf("scheduler: syscall from unknown worker %d", worker)
		s.schedule(ctx)
		return
	}
	if entry.HasIOPending() {
		// one outstanding request per worker
		log.Printf("scheduler: worker %d already has a pending request, syscall rejected", worker)
		s.schedule(ctx)
		return
	}

	if req, ok := entry.Handle.ReceiveRequest(); ok {
		entry.SaveContext(req)
		log.Printf("scheduler: syscall %s from worker %d at pc %d", req.Op, worker, req.PC)
	} else {
		// not fatal: proceed with whatever context is already recorded
		log.Printf("scheduler: syscall from worker %d carried no payload", worker)
	}

	entry.Handle.Pause()
	entry.MarkBlocked()
	if err := s.blocked.enqueue(worker); err != nil {
		log.Printf("scheduler: %v", err)
	}

	if !s.ioInProgress {
		s.beginNextService(ctx)
	}

	if s.current == worker {
		s.cursor = worker
		s.current = None
	}
	s.schedule(ctx)
}

// handleIOComplete unblocks the serviced worker and moves the device on to
// the next queued request, if any.
func (s *Service) handleIOComplete(ctx context.Context) {
	s.ioInProgress = false

	if s.servicedWorker == None {
		log.Printf("scheduler: spurious I/O completion")
		s.schedule(ctx)
		return
	}

	entry := s.table.Entry(s.servicedWorker)
	entry.MarkReady()
	log.Printf("scheduler: I/O for worker %d complete", s.servicedWorker)
	s.servicedWorker = None

	if !s.blocked.isEmpty() {
		s.beginNextService(ctx)
	}
	s.schedule(ctx)
}

// beginNextService dequeues the head of the blocked queue and asks the device
// to service it. Callers must ensure no operation is currently in service.
func (s *Service) beginNextService(ctx context.Context) {
	next, ok := s.blocked.dequeue()
	if !ok {
		return
	}
	s.servicedWorker = next
	s.ioInProgress = true
	if err := s.device.Begin(ctx, next); err != nil {
		log.Printf("scheduler: failed to begin device service for worker %d: %v", next, err)
	}
}

// schedule deterministically selects the next runnable worker: the scan
// starts immediately after the previous running index and wraps circularly,
// the first ready entry winning. A running worker is preempted and demoted to
// ready before selection, which keeps it a re-selectable candidate when it is
// the only ready entry. Callers must hold s.mu.
func (s *Service) schedule(ctx context.Context) {
	if s.current != None {
		entry := s.table.Entry(s.current)
		if entry.GetState() == pcb.StateRunning {
			entry.Handle.Pause()
			entry.SetState(pcb.StateReady)
			log.Printf("scheduler: preempting worker %d", s.current)
		}
		s.cursor = s.current
		s.current = None
	}

	next := None
	n := s.table.Len()
	for k := 1; k <= n; k++ {
		i := ((s.cursor + k) % n + n) % n
		entry := s.table.Entry(i)
		if entry.GetState() == pcb.StateReady && entry.Handle.Alive() {
			next = i
			break
		}
	}
	if next == None {
		log.Printf("scheduler: no ready worker, idling")
		return
	}

	entry := s.table.Entry(next)
	if pc, ok := entry.ConsumeContext(); ok {
		// resume at the instruction after the syscall; deliver before the
		// worker is allowed to run again
		if err := entry.Handle.SendContext(pc + 1); err != nil {
			log.Printf("scheduler: failed to restore context for worker %d: %v", next, err)
		}
	}
	entry.SetState(pcb.StateRunning)
	s.current = next
	s.cursor = next
	entry.Handle.Resume()
	log.Printf("scheduler: running worker %d", next)
}

// Current returns the index of the running worker, or None.
func (s *Service) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IOInProgress reports whether a device operation is active.
func (s *Service) IOInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ioInProgress
}

// ServicedWorker returns the worker currently in device service, or None.
func (s *Service) ServicedWorker() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.servicedWorker
}

// BlockedCount returns the number of workers parked in the blocked queue,
// excluding the one already in service.
func (s *Service) BlockedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked.size()
}

// Table exposes the process table for inspection.
func (s *Service) Table() *pcb.Table {
	return s.table
}

// Shutdown stops the dispatcher.
func (s *Service) Shutdown() {
	s.once.Do(func() {
		close(s.shutdownCh)
		if s.cancelFn != nil {
			s.cancelFn()
		}
	})
	s.workerWg.Wait()
}
