package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/breez-edu/breez/internal/config"
	"github.com/breez-edu/breez/internal/kvstore"
	"github.com/breez-edu/breez/supabase/client"
)

type fakeBackend struct {
	events     chan Event
	current    *client.Session
	currentErr error
	signUpErr  error
	signInErr  error
	signOutErr error
	signOuts   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{events: make(chan Event, 8)}
}

func (f *fakeBackend) Events() <-chan Event { return f.events }

func (f *fakeBackend) SignUp(ctx context.Context, email, password string, meta client.SignUpMetadata) error {
	return f.signUpErr
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) error {
	if f.signInErr != nil {
		return f.signInErr
	}
	f.events <- Event{Type: EventSignedIn, Session: f.current}
	return nil
}

func (f *fakeBackend) SignOut(ctx context.Context, accessToken string) error {
	f.signOuts++
	return f.signOutErr
}

func (f *fakeBackend) CurrentSession(ctx context.Context, cached *client.Session) (*client.Session, error) {
	return f.current, f.currentErr
}

func testConfig() config.SupabaseConfig {
	return config.SupabaseConfig{URL: "http://localhost:54321", AnonKey: "anon", Bucket: "resources"}
}

func testSession(userID string) *client.Session {
	return &client.Session{
		AccessToken: "token-" + userID,
		User:        &client.User{ID: userID, Email: userID + "@eastdelta.edu.bd"},
	}
}

func waitPhase(t *testing.T, c *Cache, want Phase) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := c.Current(); snap.Phase == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("phase never reached %v (now %v)", want, c.Current().Phase)
	return Snapshot{}
}

func TestStartAuthenticatesFromBackend(t *testing.T) {
	backend := newFakeBackend()
	backend.current = testSession("u1")

	kv := kvstore.NewMemory()
	c := New(testConfig(), backend, kv, nil)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := c.Current()
	if snap.Phase != Authenticated {
		t.Fatalf("phase = %v, want authenticated", snap.Phase)
	}
	if snap.User == nil || snap.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", snap.User)
	}

	// Persisted for the next warm start.
	if flag, ok := kv.Get(KeyAuthState); !ok || flag != "authenticated" {
		t.Fatalf("auth flag = %q ok=%v", flag, ok)
	}
	if _, ok := kv.Get(KeySession); !ok {
		t.Fatal("session not persisted")
	}
}

func TestWarmStartPaintsCachedUserThenLiveWins(t *testing.T) {
	// Cache claims u-stale is signed in; backend says nobody is.
	kv := kvstore.NewMemory()
	userData, _ := json.Marshal(&client.User{ID: "u-stale"})
	kv.Set(KeyUserData, string(userData))
	kv.Set(KeyAuthState, "authenticated")

	backend := newFakeBackend()
	backend.current = nil

	c := New(testConfig(), backend, kv, nil)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := c.Current()
	if snap.Phase != Anonymous {
		t.Fatalf("live state should win: %v", snap.Phase)
	}
	// Stale cache overwritten.
	if _, ok := kv.Get(KeyAuthState); ok {
		t.Fatal("stale auth flag should be cleared")
	}
}

func TestEventsDriveState(t *testing.T) {
	backend := newFakeBackend()
	kv := kvstore.NewMemory()
	c := New(testConfig(), backend, kv, nil)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitPhase(t, c, Anonymous)

	sub, cancel := c.Subscribe()
	defer cancel()

	backend.events <- Event{Type: EventSignedIn, Session: testSession("u2")}
	snap := waitPhase(t, c, Authenticated)
	if snap.User.ID != "u2" {
		t.Fatalf("user = %s", snap.User.ID)
	}

	select {
	case got := <-sub:
		if got.Phase != Authenticated {
			t.Fatalf("subscriber saw %v", got.Phase)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never notified")
	}

	backend.events <- Event{Type: EventSignedOut}
	waitPhase(t, c, Anonymous)
	if _, ok := kv.Get(KeySession); ok {
		t.Fatal("session should be cleared after sign-out event")
	}
}

func TestSignOutClearsLocalEvenWhenRemoteFails(t *testing.T) {
	backend := newFakeBackend()
	backend.current = testSession("u3")
	backend.signOutErr = errors.New("network down")

	kv := kvstore.NewMemory()
	c := New(testConfig(), backend, kv, nil)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitPhase(t, c, Authenticated)

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("signout must not surface remote failure: %v", err)
	}
	if backend.signOuts != 1 {
		t.Fatalf("remote signout attempts = %d", backend.signOuts)
	}

	snap := c.Current()
	if snap.Phase != Anonymous || snap.User != nil || snap.Session != nil {
		t.Fatalf("local state not cleared: %+v", snap)
	}
	for _, key := range []string{KeySession, KeyUserData, KeyAuthState} {
		if _, ok := kv.Get(key); ok {
			t.Fatalf("key %s not cleared", key)
		}
	}
}

func TestSignUpFailsFastWithoutConfiguration(t *testing.T) {
	c := New(config.SupabaseConfig{}, nil, kvstore.NewMemory(), nil)
	err := c.SignUp(context.Background(), "x@eastdelta.edu.bd", "secret1", client.SignUpMetadata{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if err := c.SignIn(context.Background(), "x@eastdelta.edu.bd", "secret1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("signin err = %v, want ErrNotConfigured", err)
	}
}

func TestSignUpDoesNotSetStateItself(t *testing.T) {
	backend := newFakeBackend()
	c := New(testConfig(), backend, kvstore.NewMemory(), nil)
	defer c.Close()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitPhase(t, c, Anonymous)

	if err := c.SignUp(context.Background(), "new@eastdelta.edu.bd", "secret1", client.SignUpMetadata{
		FullName:  "New Student",
		StudentID: "EDU123456",
		Semester:  "3",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// No event emitted by the fake, so the cache must still be anonymous.
	if snap := c.Current(); snap.Phase != Anonymous {
		t.Fatalf("signup must not set state directly: %v", snap.Phase)
	}
}
