package authstate

import (
	"context"
	"time"

	"github.com/breez-edu/breez/supabase/client"
)

// GoTrueBackend adapts the Supabase auth client to the Backend interface.
// Successful operations are announced on the event channel, which is how
// the cache (the subscriber) learns about state changes. The operations
// themselves never touch cache state directly.
type GoTrueBackend struct {
	client *client.Client
	events chan Event
}

var _ Backend = (*GoTrueBackend)(nil)

// NewGoTrueBackend wraps a Supabase client.
func NewGoTrueBackend(c *client.Client) *GoTrueBackend {
	return &GoTrueBackend{
		client: c,
		events: make(chan Event, 8),
	}
}

// Events implements Backend.
func (b *GoTrueBackend) Events() <-chan Event { return b.events }

// SignUp implements Backend. When the deployment answers with an
// immediate session (email confirmation disabled) a SIGNED_IN event
// follows; otherwise no event fires until the user signs in.
func (b *GoTrueBackend) SignUp(ctx context.Context, email, password string, meta client.SignUpMetadata) error {
	session, err := b.client.Auth().SignUp(ctx, email, password, meta)
	if err != nil {
		return err
	}
	if session != nil && session.User != nil && session.AccessToken != "" {
		b.announce(session)
	}
	return nil
}

// SignIn implements Backend.
func (b *GoTrueBackend) SignIn(ctx context.Context, email, password string) error {
	session, err := b.client.Auth().SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	b.announce(session)
	return nil
}

// SignOut implements Backend.
func (b *GoTrueBackend) SignOut(ctx context.Context, accessToken string) error {
	b.client.SetAccessToken("")
	err := b.client.Auth().SignOut(ctx, accessToken)
	b.emit(Event{Type: EventSignedOut})
	return err
}

// CurrentSession implements Backend: a cached session is authoritative
// only after the backend confirms its token still identifies a user.
func (b *GoTrueBackend) CurrentSession(ctx context.Context, cached *client.Session) (*client.Session, error) {
	if cached == nil || sessionExpired(cached, time.Now()) {
		return nil, nil
	}

	user, err := b.client.Auth().GetUser(ctx, cached.AccessToken)
	if err != nil {
		return nil, err
	}

	session := *cached
	session.User = user
	b.client.SetAccessToken(session.AccessToken)
	return &session, nil
}

func (b *GoTrueBackend) announce(session *client.Session) {
	b.client.SetAccessToken(session.AccessToken)
	b.emit(Event{Type: EventSignedIn, Session: session})
}

func (b *GoTrueBackend) emit(ev Event) {
	// Never block an auth operation on a slow subscriber.
	select {
	case b.events <- ev:
	default:
	}
}
