package session

// State is the lifecycle position of a host session.
type State int

const (
	StateUninitialized State = iota // No successful initialize yet
	StateActive                     // Initialized, verbs reach the host
	StateTerminated                 // Terminated, every verb is a no-op
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}
