package scheduler

import (
	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/messaging"
)

// Option customises the scheduler service.
type Option func(*Service)

// WithTable sets the process table.
func WithTable(table *pcb.Table) Option {
	return func(s *Service) {
		s.table = table
	}
}

// WithQueue sets the interrupt queue the dispatcher consumes.
func WithQueue(queue messaging.Queue[irq.Interrupt]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithDevice sets the device notifier.
func WithDevice(device Device) Option {
	return func(s *Service) {
		s.device = device
	}
}
