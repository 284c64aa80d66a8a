package domain

// ExecutionState is the sequencer's two-valued run flag.
type ExecutionState int32

const (
	// StateIdle means no sequence is scheduling work.
	StateIdle ExecutionState = iota
	// StateRunning means the current sequence may keep scheduling hooks and items.
	StateRunning
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// RunStatus is the outcome of one sequence.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunCompleted  RunStatus = "completed"  // every step was reached
	RunSuperseded RunStatus = "superseded" // a newer transition stopped it
)
