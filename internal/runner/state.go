package runner

// State is the lifecycle stage of a batch.
type State int

const (
	StateParsed State = iota
	StateExpanded
	StateValidated
	StateDispatched
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateExpanded:
		return "expanded"
	case StateValidated:
		return "validated"
	case StateDispatched:
		return "dispatched"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
