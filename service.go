package schedsim

import (
	"time"

	"github.com/viant/schedsim/internal/idgen"
	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/device"
	"github.com/viant/schedsim/service/messaging"
	mmemory "github.com/viant/schedsim/service/messaging/memory"
	"github.com/viant/schedsim/service/scheduler"
	"github.com/viant/schedsim/service/worker"
)

// Service wires a complete simulation: the interrupt queue, the simulated
// workers, the interrupt source and the scheduler.
type Service struct {
	runtime   *Runtime
	config    *Config
	queue     messaging.Queue[irq.Interrupt]
	listener  worker.Listener
	stepDelay time.Duration
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.ensureBaseSetup()

	workers := make([]*worker.Worker, s.config.Workers)
	handles := make([]pcb.Handle, s.config.Workers)
	for i := range workers {
		var opts []worker.Option
		if s.stepDelay > 0 {
			opts = append(opts, worker.WithStepDelay(s.stepDelay))
		}
		if s.listener != nil {
			opts = append(opts, worker.WithListener(s.listener))
		}
		workers[i] = worker.New(i, s.config.Program, s.queue, opts...)
		handles[i] = workers[i]
	}
	table := pcb.NewTable(handles)
	dev := device.New(s.config.Device, s.queue)

	sched, err := scheduler.New(
		scheduler.WithTable(table),
		scheduler.WithQueue(s.queue),
		scheduler.WithDevice(dev))
	if err != nil {
		return err
	}

	s.runtime.id = idgen.New()
	s.runtime.workers = workers
	s.runtime.table = table
	s.runtime.device = dev
	s.runtime.scheduler = sched
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.queue == nil {
		s.queue = mmemory.NewQueue[irq.Interrupt](mmemory.Config{QueueBuffer: s.config.QueueBuffer})
	}
}

// Runtime returns the wired simulation runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a simulation service. An invalid configuration (worker count
// outside 3..6) fails here, before anything is spawned.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}, config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
