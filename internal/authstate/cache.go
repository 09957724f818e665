package authstate

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/breez-edu/breez/internal/config"
	"github.com/breez-edu/breez/internal/kvstore"
	"github.com/breez-edu/breez/internal/metrics"
	"github.com/breez-edu/breez/pkg/logger"
	"github.com/breez-edu/breez/supabase/client"
)

// Local cache keys, warm-start only.
const (
	KeySession   = "@breez_user_session"
	KeyUserData  = "@breez_user_data"
	KeyAuthState = "@breez_auth_state"
)

const authStateAuthenticated = "authenticated"

// Cache is the auth-state holder. It has exactly one writer (the event
// loop plus the lifecycle methods, all serialized through the mutex) and
// any number of subscribed readers. Construct with New, start with Start,
// release with Close.
type Cache struct {
	cfg     config.SupabaseConfig
	backend Backend
	local   kvstore.Store
	log     *logger.Logger

	mu      sync.RWMutex
	phase   Phase
	user    *client.User
	session *client.Session
	subs    map[int]chan Snapshot
	nextSub int

	stop     chan struct{}
	loopDone chan struct{}
}

// New constructs an auth-state cache. backend may be nil when the
// connection parameters are absent; auth operations then fail fast with
// ErrNotConfigured.
func New(cfg config.SupabaseConfig, backend Backend, local kvstore.Store, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.NewDefault("authstate")
	}
	return &Cache{
		cfg:     cfg,
		backend: backend,
		local:   local,
		log:     log,
		phase:   Uninitialized,
		subs:    make(map[int]chan Snapshot),
		stop:    make(chan struct{}),
	}
}

// Start transitions to Loading, paints the cached user for optimistic
// display, asks the backend for the authoritative session, then follows
// backend events until Close. Start never fails the warm path: cache
// errors only cost the optimistic paint.
func (c *Cache) Start(ctx context.Context) error {
	c.setState(Loading, c.cachedUser(), nil)

	if c.backend == nil {
		// Unconfigured: nothing authoritative to ask. Settle on the
		// anonymous state so the UI is not stuck loading.
		c.setState(Anonymous, nil, nil)
		return ErrNotConfigured
	}

	session, err := c.backend.CurrentSession(ctx, c.cachedSession())
	if err != nil {
		c.log.WithError(err).Warn("session check failed; treating as anonymous")
	}
	c.applySession(session)

	c.loopDone = make(chan struct{})
	go c.eventLoop()
	return nil
}

// Close stops following backend events.
func (c *Cache) Close() {
	close(c.stop)
	if c.loopDone != nil {
		<-c.loopDone
	}

	c.mu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.mu.Unlock()
}

func (c *Cache) eventLoop() {
	defer close(c.loopDone)
	events := c.backend.Events()
	for {
		select {
		case <-c.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.log.Debugf("auth event: %s", ev.Type)
			metrics.RecordAuthEvent(string(ev.Type))
			c.applySession(ev.Session)
		}
	}
}

// Current returns the present snapshot.
func (c *Cache) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Phase: c.phase, User: c.user, Session: c.session}
}

// Subscribe registers an observer. Every state change is delivered as a
// snapshot; slow observers miss intermediate states, never the latest.
// The returned cancel function must be called to release the channel.
func (c *Cache) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if ch, ok := c.subs[id]; ok {
			close(ch)
			delete(c.subs, id)
		}
	}
	return ch, cancel
}

// SignUp registers a new account. State is not set here; it arrives via
// the backend event subscription.
func (c *Cache) SignUp(ctx context.Context, email, password string, meta client.SignUpMetadata) error {
	if c.backend == nil || !c.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := c.backend.SignUp(ctx, email, password, meta); err != nil {
		c.log.WithError(err).Warn("signup rejected")
		return err
	}
	return nil
}

// SignIn exchanges credentials for a session. As with SignUp, state
// arrives via the event subscription.
func (c *Cache) SignIn(ctx context.Context, email, password string) error {
	if c.backend == nil || !c.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := c.backend.SignIn(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// SignOut clears local state and the durable cache before contacting the
// backend, so the user is signed out locally even when the network call
// fails. The remote result is logged and never returned.
func (c *Cache) SignOut(ctx context.Context) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	c.setState(Anonymous, nil, nil)

	if c.backend != nil && session != nil {
		if err := c.backend.SignOut(ctx, session.AccessToken); err != nil {
			c.log.WithError(err).Warn("remote signout failed; local state already cleared")
		}
	}
	return nil
}

// applySession is the single set-state-and-persist step shared by the
// initial session check and every subsequent event.
func (c *Cache) applySession(session *client.Session) {
	if session != nil && session.User != nil {
		c.setState(Authenticated, session.User, session)
	} else {
		c.setState(Anonymous, nil, nil)
	}
}

func (c *Cache) setState(phase Phase, user *client.User, session *client.Session) {
	c.mu.Lock()
	c.phase = phase
	c.user = user
	c.session = session
	snap := Snapshot{Phase: phase, User: user, Session: session}
	for _, ch := range c.subs {
		// Replace any undelivered snapshot; observers always see the
		// latest state.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	c.mu.Unlock()

	c.persist(phase, user, session)
}

func (c *Cache) persist(phase Phase, user *client.User, session *client.Session) {
	if c.local == nil || phase == Loading {
		return
	}

	if phase == Authenticated && user != nil && session != nil {
		userData, err := json.Marshal(user)
		if err != nil {
			c.log.WithError(err).Warn("marshal cached user")
			return
		}
		sessionData, err := json.Marshal(session)
		if err != nil {
			c.log.WithError(err).Warn("marshal cached session")
			return
		}
		if err := c.local.Set(KeySession, string(sessionData)); err != nil {
			c.log.WithError(err).Warn("persist session")
		}
		if err := c.local.Set(KeyUserData, string(userData)); err != nil {
			c.log.WithError(err).Warn("persist user")
		}
		if err := c.local.Set(KeyAuthState, authStateAuthenticated); err != nil {
			c.log.WithError(err).Warn("persist auth flag")
		}
		return
	}

	if err := c.local.MultiRemove(KeySession, KeyUserData, KeyAuthState); err != nil {
		c.log.WithError(err).Warn("clear auth cache")
	}
}

func (c *Cache) cachedUser() *client.User {
	if c.local == nil {
		return nil
	}
	if flag, ok := c.local.Get(KeyAuthState); !ok || flag != authStateAuthenticated {
		return nil
	}
	raw, ok := c.local.Get(KeyUserData)
	if !ok {
		return nil
	}
	var user client.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

func (c *Cache) cachedSession() *client.Session {
	if c.local == nil {
		return nil
	}
	raw, ok := c.local.Get(KeySession)
	if !ok {
		return nil
	}
	var session client.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil
	}
	return &session
}
