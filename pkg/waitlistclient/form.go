package waitlistclient

import (
	"context"
	"sync"
	"time"
)

type FormState string

const (
	StateIdle    FormState = "idle"
	StateSending FormState = "sending"
	StateSuccess FormState = "success"
	StateError   FormState = "error"
)

const (
	MessageInvalidFormat  = "Please enter a valid email address."
	MessageAlreadyOnList  = "You're already on the waitlist. Thank you!"
	MessageJoined         = "You're on the waitlist! We'll email you updates."
	MessageNetworkError   = "Network error. Please try again."
	MessageGenericFailure = "Failed to join waitlist. Try again later."
)

type submitter interface {
	Submit(ctx context.Context, entry Entry) Outcome
}

// Form holds the user's input and the result of the last submit. It is safe
// for concurrent use; at most one submission is in flight at a time.
type Form struct {
	mu       sync.Mutex
	state    FormState
	message  string
	email    string
	name     string
	interest string

	client submitter
	store  SubscriptionStore
	now    func() time.Time
}

func NewForm(client *Client, store SubscriptionStore) *Form {
	return newForm(client, store)
}

func newForm(client submitter, store SubscriptionStore) *Form {
	if store == nil {
		store = &MemorySubscriptionStore{}
	}
	return &Form{
		state:  StateIdle,
		client: client,
		store:  store,
		now:    time.Now,
	}
}

// SetFields replaces the input. It is ignored while a submission is in flight.
func (f *Form) SetFields(email, name, interest string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSending {
		return
	}
	f.email, f.name, f.interest = email, name, interest
}

func (f *Form) Fields() (email, name, interest string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email, f.name, f.interest
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Submit validates the input and sends it once. A call made while another is
// still sending returns Busy and does not touch the network.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.mu.Lock()
	if f.state == StateSending {
		f.mu.Unlock()
		return Outcome{Kind: Busy}
	}

	f.message = ""
	if !ValidateFormat(f.email) {
		f.state, f.message = StateError, MessageInvalidFormat
		f.mu.Unlock()
		return Outcome{Kind: Rejected, Reason: MessageInvalidFormat}
	}

	// A broken state file only costs the shortcut; the server still decides.
	if subscribed, err := f.store.Load(); err == nil && subscribed {
		f.state, f.message = StateSuccess, MessageAlreadyOnList
		f.mu.Unlock()
		return Outcome{Kind: AlreadyJoined, Reason: MessageAlreadyOnList}
	}

	entry := Entry{Email: f.email, Name: f.name, Interest: f.interest, Timestamp: f.now()}
	f.state = StateSending
	f.mu.Unlock()

	outcome := f.client.Submit(ctx, entry)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch outcome.Kind {
	case Accepted, AlreadyJoined:
		f.state = StateSuccess
		f.message = MessageJoined
		if outcome.Kind == AlreadyJoined {
			f.message = MessageAlreadyOnList
		}
		if err := f.store.Save(); err != nil && outcome.Err == nil {
			outcome.Err = err
		}
		f.email, f.name = "", ""
	case TransportFailure:
		f.state, f.message = StateError, MessageNetworkError
	default:
		f.state, f.message = StateError, outcome.Reason
		if f.message == "" {
			f.message = MessageGenericFailure
		}
	}

	return outcome
}
