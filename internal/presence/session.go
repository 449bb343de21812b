package presence

// State is the lifecycle position of one connection.
type State int

const (
	StateConnected State = iota
	StateIdentified
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateIdentified:
		return "identified"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type session struct {
	conn  Connection
	state State
	name  string
}
