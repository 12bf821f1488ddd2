// Package schedsim is a teaching simulator of an operating-system process
// scheduler. A kernel service supervises a fixed set of worker processes and
// implements preemptive round-robin scheduling with blocking I/O: a periodic
// timer interrupt bounds each time slice, a syscall interrupt parks the
// calling worker in a FIFO blocked queue while the simulated device services
// one request at a time, and a completion interrupt readies it again with its
// saved program counter restored.
//
// All asynchronous notifications travel over a single ordered queue consumed
// by one dispatcher goroutine, which gives every handler the serialization
// guarantee of classic signal-style kernels without their reentrancy hazards.
package schedsim
