package session

// State is the lifecycle position of a Session.
type State int

const (
	// Closed: no usable token. Initial state, and the state after a revoke or
	// after being superseded by a newer Open on the same manager.
	Closed State = iota
	// Pending: a token request is in flight.
	Pending
	// Open: a token is held and data requests may be dispatched.
	Open
	// Error: the platform rejected a refresh; the held token must not be reused.
	Error
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Pending:
		return "Pending"
	case Open:
		return "Open"
	case Error:
		return "Error"
	}
	return "Unknown"
}
