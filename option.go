package schedsim

import (
	"time"

	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/service/device"
	"github.com/viant/schedsim/service/messaging"
	"github.com/viant/schedsim/service/worker"
	"github.com/viant/schedsim/tracing"
)

// Option customises the simulation service.
type Option func(s *Service)

// WithConfig sets the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithWorkers sets the worker count.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Workers = count
	}
}

// WithProgram sets the program every worker executes.
func WithProgram(program worker.Program) Option {
	return func(s *Service) {
		s.config.Program = program
	}
}

// WithDeviceConfig sets the interrupt source timings.
func WithDeviceConfig(config device.Config) Option {
	return func(s *Service) {
		s.config.Device = config
	}
}

// WithQueue sets the interrupt queue implementation.
func WithQueue(queue messaging.Queue[irq.Interrupt]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithInstructionListener registers a callback invoked for every executed
// worker instruction; used for trace output and tests.
func WithInstructionListener(listener worker.Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithStepDelay sets the simulated duration of one worker instruction.
func WithStepDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.stepDelay = delay
	}
}

// WithTracing configures OpenTelemetry tracing for the simulation. If
// outputFile is empty the stdout exporter is used. Safe to call multiple
// times - the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
