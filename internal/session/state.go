package session

import "fmt"

// ConnState is the connection lifecycle state. Exactly one dial attempt
// and at most one pending reconnect timer exist at any time; both are
// owned by the session event loop.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// connEvent is a lifecycle event consumed by the state machine.
type connEvent int

const (
	evConnect        connEvent = iota // caller or timer asks for a connection
	evOpen                            // dial succeeded
	evDialFail                        // dial failed
	evClose                           // transport closed (clean or error)
	evUserDisconnect                  // explicit teardown, no auto-reconnect
	evTimerFired                      // reconnect delay elapsed
)

func (e connEvent) String() string {
	switch e {
	case evConnect:
		return "connect"
	case evOpen:
		return "open"
	case evDialFail:
		return "dial-fail"
	case evClose:
		return "close"
	case evUserDisconnect:
		return "user-disconnect"
	case evTimerFired:
		return "timer-fired"
	}
	return fmt.Sprintf("connEvent(%d)", int(e))
}

// transition returns the next state for (state, event). ok is false
// when the event is a no-op in the current state, e.g. a connect
// request while already connecting or connected.
func transition(s ConnState, e connEvent) (next ConnState, ok bool) {
	switch e {
	case evConnect, evTimerFired:
		if s != StateDisconnected {
			return s, false
		}
		return StateConnecting, true
	case evOpen:
		if s != StateConnecting {
			return s, false
		}
		return StateConnected, true
	case evDialFail:
		if s != StateConnecting {
			return s, false
		}
		return StateDisconnected, true
	case evClose:
		if s == StateDisconnected {
			return s, false
		}
		return StateDisconnected, true
	case evUserDisconnect:
		return StateDisconnected, true
	}
	return s, false
}
