package session

// State is the transport state of a session bridge.
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
)

var transitions = map[State][]State{
	StateConnecting:   {StateConnected, StateError},
	StateConnected:    {StateDisconnected, StateError},
	StateError:        {StateDisconnected, StateConnecting},
	StateDisconnected: {StateConnecting},
}

// CanTransition reports whether the bridge may move from s to next.
// Entering connecting is only ever done by an explicit connect or
// reconnect request.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Indicator is what the status overlay of a detail view shows.
type Indicator struct {
	Visible bool
	Text    string
}

func (s State) Indicator() Indicator {
	switch s {
	case StateConnected:
		return Indicator{}
	case StateConnecting:
		return Indicator{Visible: true, Text: "Connecting..."}
	case StateError:
		return Indicator{Visible: true, Text: "Connection Error"}
	default:
		return Indicator{Visible: true, Text: "Disconnected"}
	}
}

// Change describes one transition. Err is set when the bridge entered
// the error state.
type Change struct {
	From State
	To   State
	Err  error
}
