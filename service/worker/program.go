package worker

import (
	"github.com/viant/schedsim/model/irq"
	"gopkg.in/yaml.v3"
)

// Program describes the linear instruction stream a worker executes: a fixed
// number of instructions and the program-counter values at which the worker
// issues a blocking device request.
type Program struct {
	Steps    int                   `json:"steps" yaml:"steps"`
	IOPoints map[int]irq.Operation `json:"ioPoints" yaml:"ioPoints"`
}

// UnmarshalYAML replaces - rather than merges - the I/O points of the program
// already held, so a configured program fully supersedes the default one.
func (p *Program) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Steps    int                   `yaml:"steps"`
		IOPoints map[int]irq.Operation `yaml:"ioPoints"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Steps != 0 {
		p.Steps = raw.Steps
	}
	if raw.IOPoints != nil {
		p.IOPoints = raw.IOPoints
	}
	return nil
}

// DefaultProgram returns the reference program: 30 instructions with READ
// requests at PC 5 and 15 and WRITE requests at PC 10 and 20.
func DefaultProgram() Program {
	return Program{
		Steps: 30,
		IOPoints: map[int]irq.Operation{
			5:  irq.OperationRead,
			10: irq.OperationWrite,
			15: irq.OperationRead,
			20: irq.OperationWrite,
		},
	}
}
