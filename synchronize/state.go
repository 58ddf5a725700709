package synchronize

// State is the position of a synchronization in its lifecycle. Every call
// starts Waiting and ends in exactly one of the other states.
type State int

const (
	Waiting State = iota
	Succeeded
	TimedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Succeeded:
		return "succeeded"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s != Waiting
}
