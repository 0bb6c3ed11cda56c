package waitlistclient

import "fmt"

// OutcomeKind classifies a single submission attempt.
type OutcomeKind int

const (
	// Accepted means the server stored the entry.
	Accepted OutcomeKind = iota
	// AlreadyJoined means the address was registered before (HTTP 409).
	AlreadyJoined
	// Rejected covers every other HTTP response; Reason holds the server's message.
	Rejected
	// TransportFailure means no usable HTTP response was received.
	TransportFailure
	// Busy means a submission was already in flight and nothing was sent.
	Busy
)

func (k OutcomeKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case AlreadyJoined:
		return "already_joined"
	case Rejected:
		return "rejected"
	case TransportFailure:
		return "transport_failure"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

type Outcome struct {
	Kind   OutcomeKind
	Status int
	Reason string
	Err    error
}

// Joined reports whether the address is now known to be on the waitlist.
func (o Outcome) Joined() bool {
	return o.Kind == Accepted || o.Kind == AlreadyJoined
}
