// Package authstate holds the client's authentication state: a
// single-writer state machine fed by backend auth events, mirrored to a
// durable local cache for warm-start. Live backend state always wins over
// the cache.
package authstate

import (
	"context"
	"errors"

	"github.com/breez-edu/breez/supabase/client"
)

// Phase is the auth lifecycle phase.
type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Authenticated
	Anonymous
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the auth state.
type Snapshot struct {
	Phase   Phase
	User    *client.User
	Session *client.Session
}

// EventType classifies backend auth-change events.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event is one backend-pushed auth change.
type Event struct {
	Type    EventType
	Session *client.Session
}

// Backend abstracts the auth service. The production implementation wraps
// GoTrue; tests substitute a fake.
type Backend interface {
	SignUp(ctx context.Context, email, password string, meta client.SignUpMetadata) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context, accessToken string) error
	// CurrentSession validates any previously issued session with the
	// backend, returning nil when no valid session exists.
	CurrentSession(ctx context.Context, cached *client.Session) (*client.Session, error)
	// Events is the push channel of auth changes; closed on shutdown.
	Events() <-chan Event
}

// ErrNotConfigured reports missing backend connection parameters. Auth
// flows fail fast on it.
var ErrNotConfigured = errors.New("authstate: supabase configuration is missing, check " +
	"BREEZ_SUPABASE_URL and BREEZ_SUPABASE_ANON_KEY")
