package schedsim

import (
	"context"
	"errors"
	"log"

	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/device"
	"github.com/viant/schedsim/service/scheduler"
	"github.com/viant/schedsim/service/worker"
	"github.com/viant/schedsim/tracing"
)

// Runtime owns the running pieces of one simulation. Independent runtimes do
// not share any state, so several simulations can coexist in one process.
type Runtime struct {
	id        string
	workers   []*worker.Worker
	table     *pcb.Table
	device    *device.Service
	scheduler *scheduler.Service
}

// ID returns the unique simulation run identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Start launches the workers, the interrupt source and the scheduler
// dispatcher. Workers are created paused, so nothing executes until the
// scheduler's first selection.
func (r *Runtime) Start(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.Start", "INTERNAL")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"run.id": r.id})

	for _, w := range r.workers {
		w.Start(ctx)
	}
	go func() {
		if dErr := r.device.Start(ctx); dErr != nil && !errors.Is(dErr, context.Canceled) {
			log.Printf("runtime: interrupt source stopped: %v", dErr)
		}
	}()
	return r.scheduler.Start(ctx)
}

// Shutdown stops the interrupt source, the dispatcher and finally the
// workers.
func (r *Runtime) Shutdown() {
	r.device.Shutdown()
	r.scheduler.Shutdown()
	for _, w := range r.workers {
		w.Kill()
	}
}

// Scheduler exposes the scheduler service.
func (r *Runtime) Scheduler() *scheduler.Service {
	return r.scheduler
}

// Table exposes the process table.
func (r *Runtime) Table() *pcb.Table {
	return r.table
}

// Snapshot returns a consistent copy of every process table entry.
func (r *Runtime) Snapshot() []pcb.Entry {
	return r.table.Snapshot()
}
