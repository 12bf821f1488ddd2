package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/schedsim/model/irq"
	"github.com/viant/schedsim/service/messaging/memory"
)

type recorder struct {
	mu  sync.Mutex
	pcs []int
}

func (r *recorder) listen(_, pc int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pcs = append(r.pcs, pc)
}

func (r *recorder) executed() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pcs...)
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerStaysPausedUntilResumed(t *testing.T) {
	queue := memory.NewQueue[irq.Interrupt](memory.DefaultConfig())
	rec := &recorder{}
	w := New(0, Program{Steps: 3}, queue, WithListener(rec.listen))
	w.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.executed(), "a new worker is paused until the scheduler releases it")
	assert.True(t, w.Alive())

	w.Resume()
	waitFor(t, time.Second, func() bool { return !w.Alive() })
	assert.Equal(t, []int{0, 1, 2}, rec.executed())
}

func TestWorkerSyscallRoundTrip(t *testing.T) {
	queue := memory.NewQueue[irq.Interrupt](memory.DefaultConfig())
	rec := &recorder{}
	program := Program{Steps: 4, IOPoints: map[int]irq.Operation{1: irq.OperationWrite}}
	w := New(2, program, queue, WithListener(rec.listen))
	w.Start(context.Background())
	w.Resume()

	// the worker raises the syscall interrupt after writing its payload
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	interrupt := *message.T()
	require.NoError(t, message.Ack())
	assert.Equal(t, irq.KindSyscall, interrupt.Kind)
	assert.Equal(t, 2, interrupt.Worker)

	request, ok := w.ReceiveRequest()
	require.True(t, ok, "payload must be readable once notified")
	assert.Equal(t, 1, request.PC)
	assert.Equal(t, irq.OperationWrite, request.Op)

	_, ok = w.ReceiveRequest()
	assert.False(t, ok, "payload is written exactly once per request")

	// worker stays parked until its context is restored
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []int{0, 1}, rec.executed())

	require.NoError(t, w.SendContext(2))
	w.Resume()
	waitFor(t, time.Second, func() bool { return !w.Alive() })
	assert.Equal(t, []int{0, 1, 2, 3}, rec.executed(), "execution continues at the restored counter")
}

func TestWorkerSendContextCapacity(t *testing.T) {
	queue := memory.NewQueue[irq.Interrupt](memory.DefaultConfig())
	w := New(0, Program{Steps: 1}, queue)

	require.NoError(t, w.SendContext(7))
	assert.Error(t, w.SendContext(8), "a second undelivered context is a protocol violation")
}

func TestWorkerKillWhileBlocked(t *testing.T) {
	queue := memory.NewQueue[irq.Interrupt](memory.DefaultConfig())
	program := Program{Steps: 4, IOPoints: map[int]irq.Operation{0: irq.OperationRead}}
	w := New(1, program, queue)
	w.Start(context.Background())
	w.Resume()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := queue.Consume(ctx)
	require.NoError(t, err)

	w.Kill()
	waitFor(t, time.Second, func() bool { return !w.Alive() })
}

func TestWorkerKillWhilePaused(t *testing.T) {
	queue := memory.NewQueue[irq.Interrupt](memory.DefaultConfig())
	w := New(0, Program{Steps: 10}, queue)
	w.Start(context.Background())

	w.Kill()
	waitFor(t, time.Second, func() bool { return !w.Alive() })
}

func TestDefaultProgram(t *testing.T) {
	program := DefaultProgram()
	assert.Equal(t, 30, program.Steps)
	assert.Equal(t, irq.OperationRead, program.IOPoints[5])
	assert.Equal(t, irq.OperationWrite, program.IOPoints[10])
	assert.Equal(t, irq.OperationRead, program.IOPoints[15])
	assert.Equal(t, irq.OperationWrite, program.IOPoints[20])
}
