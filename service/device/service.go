package device

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/service/messaging"
	"gopkg.in/yaml.v3"
)

// Config represents interrupt source configuration
type Config struct {
	// TimeSlice is the period between timer interrupts
	TimeSlice time.Duration `json:"timeSlice" yaml:"timeSlice"`

	// IOLatency is the fixed simulated device latency per request
	IOLatency time.Duration `json:"ioLatency" yaml:"ioLatency"`
}

// DefaultConfig returns the default interrupt source configuration
func DefaultConfig() Config {
	return Config{
		TimeSlice: 20 * time.Millisecond,
		IOLatency: 60 * time.Millisecond,
	}
}

// UnmarshalYAML decodes durations from their textual form ("10ms", "1s");
// absent fields keep whatever value the config already holds.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		TimeSlice string `yaml:"timeSlice"`
		IOLatency string `yaml:"ioLatency"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.TimeSlice != "" {
		value, err := time.ParseDuration(raw.TimeSlice)
		if err != nil {
			return fmt.Errorf("invalid timeSlice: %w", err)
		}
		c.TimeSlice = value
	}
	if raw.IOLatency != "" {
		value, err := time.ParseDuration(raw.IOLatency)
		if err != nil {
			return fmt.Errorf("invalid ioLatency: %w", err)
		}
		c.IOLatency = value
	}
	return nil
}

// Service simulates the external interrupt source: it raises a periodic timer
// interrupt and, once asked to begin device service, raises exactly one
// completion interrupt after the fixed latency. It never raises a completion
// spontaneously.
type Service struct {
	config Config
	queue  messaging.Queue[irq.Interrupt]

	mu        sync.Mutex
	inService bool

	shutdownCh chan struct{}
	once       sync.Once
}

// New creates a new interrupt source publishing to the supplied queue.
func New(config Config, queue messaging.Queue[irq.Interrupt]) *Service {
	return &Service{
		config:     config,
		queue:      queue,
		shutdownCh: make(chan struct{}),
	}
}

// Start begins the timer loop. It blocks until the context is cancelled or
// Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TimeSlice)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			interrupt := irq.NewTimer()
			if err := s.queue.Publish(ctx, &interrupt); err != nil {
				log.Printf("device: failed to publish timer interrupt: %v", err)
			}
		}
	}
}

// Begin starts device service for a worker. At most one operation may be in
// service at a time; a second Begin before the completion fires is a kernel
// bug and is rejected.
func (s *Service) Begin(ctx context.Context, worker int) error {
	s.mu.Lock()
	if s.inService {
		s.mu.Unlock()
		return fmt.Errorf("device busy: operation already in service")
	}
	s.inService = true
	s.mu.Unlock()

	time.AfterFunc(s.config.IOLatency, func() {
		s.mu.Lock()
		s.inService = false
		s.mu.Unlock()

		select {
		case <-s.shutdownCh:
			return
		default:
		}
		interrupt := irq.NewIOComplete()
		if err := s.queue.Publish(ctx, &interrupt); err != nil {
			log.Printf("device: failed to publish completion for worker %d: %v", worker, err)
		}
	})
	return nil
}

// InService reports whether a device operation is currently being serviced.
func (s *Service) InService() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inService
}

// Shutdown stops the timer loop and suppresses pending completions.
func (s *Service) Shutdown() {
	s.once.Do(func() {
		close(s.shutdownCh)
	})
}
