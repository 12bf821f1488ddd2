package pcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/schedsim/model/irq"
)

type nopHandle struct{}

func (nopHandle) Pause()                               {}
func (nopHandle) Resume()                              {}
func (nopHandle) SendContext(pc int) error             { return nil }
func (nopHandle) ReceiveRequest() (*irq.Request, bool) { return nil, false }
func (nopHandle) Alive() bool                          { return true }
func (nopHandle) Kill()                                {}

func TestEntryTransitions(t *testing.T) {
	entry := NewEntry(1, nopHandle{})
	assert.Equal(t, StateReady, entry.GetState())
	assert.False(t, entry.HasIOPending())

	entry.SetState(StateRunning)
	assert.Equal(t, StateRunning, entry.GetState())

	entry.MarkBlocked()
	assert.Equal(t, StateBlocked, entry.GetState())
	assert.True(t, entry.HasIOPending())

	entry.MarkReady()
	assert.Equal(t, StateReady, entry.GetState())
	assert.False(t, entry.HasIOPending())
}

func TestEntryContextConsumedOnce(t *testing.T) {
	entry := NewEntry(0, nopHandle{})

	_, ok := entry.ConsumeContext()
	assert.False(t, ok, "no context recorded yet")

	entry.SaveContext(&irq.Request{PC: 5, Op: irq.OperationRead})
	assert.True(t, entry.Snapshot().SavedPCValid)
	assert.Equal(t, irq.OperationRead, entry.Snapshot().SavedOp)

	pc, ok := entry.ConsumeContext()
	assert.True(t, ok)
	assert.Equal(t, 5, pc)
	assert.False(t, entry.Snapshot().SavedPCValid, "context is invalid once consumed")

	_, ok = entry.ConsumeContext()
	assert.False(t, ok, "context must never be restored twice")
}

func TestTable(t *testing.T) {
	testCases := []struct {
		description string
		workers     int
	}{
		{description: "three workers", workers: 3},
		{description: "six workers", workers: 6},
	}

	for _, testCase := range testCases {
		handles := make([]Handle, testCase.workers)
		for i := range handles {
			handles[i] = nopHandle{}
		}
		table := NewTable(handles)
		assert.Equal(t, testCase.workers, table.Len(), testCase.description)

		snapshot := table.Snapshot()
		assert.Equal(t, testCase.workers, len(snapshot), testCase.description)
		for i := range snapshot {
			assert.Equal(t, i, snapshot[i].ID, testCase.description)
			assert.Equal(t, StateReady, snapshot[i].State, testCase.description)
			assert.False(t, snapshot[i].IOPending, testCase.description)
		}
		assert.Nil(t, table.Entry(-1), testCase.description)
		assert.Nil(t, table.Entry(testCase.workers), testCase.description)
	}
}
