package schedsim

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/schedsim/service/device"
	"github.com/viant/schedsim/service/worker"
	"gopkg.in/yaml.v3"
)

// Worker count bounds fixed by the simulation contract.
const (
	MinWorkers = 3
	MaxWorkers = 6
)

// Config is a serialisable representation of the simulation configuration. It
// can be populated from JSON or YAML; the zero-value of nested fields
// inherits their package defaults.
type Config struct {
	// Workers is the number of worker processes, 3..6
	Workers int `json:"workers" yaml:"workers"`

	// QueueBuffer bounds the interrupt queue
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`

	Device  device.Config  `json:"device" yaml:"device"`
	Program worker.Program `json:"program" yaml:"program"`
}

// DefaultConfig returns a Config populated with the package defaults: three
// workers running the reference program.
func DefaultConfig() *Config {
	return &Config{
		Workers:     MinWorkers,
		QueueBuffer: 64,
		Device:      device.DefaultConfig(),
		Program:     worker.DefaultProgram(),
	}
}

// Validate returns an error describing invalid settings or nil. An invalid
// worker count is a fatal configuration error; nothing is spawned.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between %d and %d, got %d", MinWorkers, MaxWorkers, c.Workers)
	}
	if c.Device.TimeSlice <= 0 {
		return fmt.Errorf("device.timeSlice must be > 0")
	}
	if c.Device.IOLatency <= 0 {
		return fmt.Errorf("device.ioLatency must be > 0")
	}
	if c.Program.Steps <= 0 {
		return fmt.Errorf("program.steps must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration from the supplied URL (file, embed or
// any scheme the abstract file system supports) on top of the defaults.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
