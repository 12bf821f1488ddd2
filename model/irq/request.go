package irq

// Operation identifies the device operation a worker requested.
type Operation string

const (
	OperationRead  Operation = "READ"
	OperationWrite Operation = "WRITE"
)

// Request is the fixed-size record a worker writes to its outbound channel
// immediately before raising a syscall interrupt: the program counter at which
// the request was issued and the requested operation kind.
type Request struct {
	PC int       `json:"pc"`
	Op Operation `json:"op"`
}
