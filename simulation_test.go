package schedsim_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/schedsim"
	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/model/pcb"
	"github.com/viant/schedsim/service/device"
	"github.com/viant/schedsim/service/worker"
)

type traceRecorder struct {
	mu  sync.Mutex
	pcs map[int][]int
}

func newTraceRecorder() *traceRecorder {
	return &traceRecorder{pcs: map[int][]int{}}
}

func (r *traceRecorder) listen(id, pc int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pcs[id] = append(r.pcs[id], pc)
}

func (r *traceRecorder) executed(id int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pcs[id]...)
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNewValidatesWorkerCount(t *testing.T) {
	for _, workers := range []int{-1, 0, 2, 7, 10} {
		_, err := schedsim.New(schedsim.WithWorkers(workers))
		assert.Error(t, err, "worker count %d must be rejected before anything is spawned", workers)
	}

	for workers := 3; workers <= 6; workers++ {
		srv, err := schedsim.New(schedsim.WithWorkers(workers))
		require.NoError(t, err)

		snapshot := srv.Runtime().Snapshot()
		assert.Equal(t, workers, len(snapshot))
		for i := range snapshot {
			assert.Equal(t, pcb.StateReady, snapshot[i].State, "every worker is ready before scheduling starts")
			assert.False(t, snapshot[i].IOPending)
		}
		assert.NotEmpty(t, srv.Runtime().ID())
	}
}

func TestSimulationRoundRobinFairness(t *testing.T) {
	recorder := newTraceRecorder()
	srv, err := schedsim.New(
		schedsim.WithWorkers(3),
		schedsim.WithProgram(worker.Program{Steps: 1 << 20}),
		schedsim.WithStepDelay(time.Millisecond),
		schedsim.WithDeviceConfig(device.Config{TimeSlice: 10 * time.Millisecond, IOLatency: 20 * time.Millisecond}),
		schedsim.WithInstructionListener(recorder.listen))
	require.NoError(t, err)

	runtime := srv.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	defer runtime.Shutdown()

	// with no I/O activity repeated time slices must visit every worker
	waitFor(t, 5*time.Second, func() bool {
		for id := 0; id < 3; id++ {
			if len(recorder.executed(id)) == 0 {
				return false
			}
		}
		return true
	})

	running := 0
	snapshot := runtime.Snapshot()
	for i := range snapshot {
		if snapshot[i].State == pcb.StateRunning {
			running++
		}
	}
	assert.LessOrEqual(t, running, 1, "at most one worker runs at any instant")
}

func TestSimulationIORoundTrip(t *testing.T) {
	recorder := newTraceRecorder()
	program := worker.Program{Steps: 8, IOPoints: map[int]irq.Operation{2: irq.OperationRead}}
	srv, err := schedsim.New(
		schedsim.WithWorkers(3),
		schedsim.WithProgram(program),
		schedsim.WithStepDelay(time.Millisecond),
		schedsim.WithDeviceConfig(device.Config{TimeSlice: 5 * time.Millisecond, IOLatency: 10 * time.Millisecond}),
		schedsim.WithInstructionListener(recorder.listen))
	require.NoError(t, err)

	runtime := srv.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	defer runtime.Shutdown()

	waitFor(t, 10*time.Second, func() bool {
		for id := 0; id < 3; id++ {
			if len(recorder.executed(id)) < program.Steps {
				return false
			}
		}
		return true
	})

	// every worker blocked at pc 2 and was resumed at exactly pc 3: the full
	// instruction stream shows no duplicate and no skipped counter
	for id := 0; id < 3; id++ {
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, recorder.executed(id), "worker %d", id)
	}

	waitFor(t, time.Second, func() bool { return !runtime.Scheduler().IOInProgress() })
	finalSnapshot := runtime.Snapshot()
	for i := range finalSnapshot {
		assert.False(t, finalSnapshot[i].IOPending, "worker %d", finalSnapshot[i].ID)
	}
}

func TestSimulationBackToBackIO(t *testing.T) {
	recorder := newTraceRecorder()
	program := worker.Program{Steps: 4, IOPoints: map[int]irq.Operation{1: irq.OperationWrite}}
	srv, err := schedsim.New(
		schedsim.WithWorkers(4),
		schedsim.WithProgram(program),
		schedsim.WithStepDelay(time.Millisecond),
		schedsim.WithDeviceConfig(device.Config{TimeSlice: 5 * time.Millisecond, IOLatency: 15 * time.Millisecond}),
		schedsim.WithInstructionListener(recorder.listen))
	require.NoError(t, err)

	runtime := srv.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	defer runtime.Shutdown()

	// all four workers request the device almost simultaneously; the single
	// device still serves every request and every worker completes
	waitFor(t, 10*time.Second, func() bool {
		for id := 0; id < 4; id++ {
			if len(recorder.executed(id)) < program.Steps {
				return false
			}
		}
		return true
	})

	for id := 0; id < 4; id++ {
		assert.Equal(t, []int{0, 1, 2, 3}, recorder.executed(id), "worker %d", id)
	}
}
