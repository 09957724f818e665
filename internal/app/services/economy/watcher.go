package economy

import (
	"context"
	"sync"

	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/pkg/logger"
	"github.com/breez-edu/breez/supabase/client"
)

// Watcher follows live profile changes over the realtime feed so the UI
// can refresh balances and standings without polling.
type Watcher struct {
	rt  *client.RealtimeClient
	log *logger.Logger

	mu       sync.Mutex
	channels []*client.Channel
}

// NewWatcher constructs a watcher over an already connected realtime
// client.
func NewWatcher(rt *client.RealtimeClient, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.NewDefault("economy.watcher")
	}
	return &Watcher{rt: rt, log: log}
}

// WatchProfile invokes fn with the updated row every time the user's
// profile changes (balance movements included).
func (w *Watcher) WatchProfile(ctx context.Context, userID string, fn func(profile.UserProfile)) error {
	ch, err := w.rt.SubscribeToPostgresChanges(ctx, client.PostgresChangesConfig{
		Event:  "UPDATE",
		Schema: "public",
		Table:  "user_profiles",
		Filter: "id=eq." + userID,
	}, func(event *client.RealtimeEvent) {
		var p profile.UserProfile
		if err := event.Record(&p); err != nil {
			w.log.WithError(err).Warn("decode profile change")
			return
		}
		fn(p)
	})
	if err != nil {
		return err
	}
	w.track(ch)
	w.log.WithField("user_id", userID).Debug("watching profile changes")
	return nil
}

// WatchStandings invokes fn whenever any profile row changes. Standings
// are computed server side, so the callback is a refresh hint, not data.
func (w *Watcher) WatchStandings(ctx context.Context, fn func()) error {
	ch, err := w.rt.SubscribeToPostgresChanges(ctx, client.PostgresChangesConfig{
		Event:  "*",
		Schema: "public",
		Table:  "user_profiles",
	}, func(*client.RealtimeEvent) {
		fn()
	})
	if err != nil {
		return err
	}
	w.track(ch)
	return nil
}

func (w *Watcher) track(ch *client.Channel) {
	w.mu.Lock()
	w.channels = append(w.channels, ch)
	w.mu.Unlock()
}

// Close unsubscribes every active watch.
func (w *Watcher) Close(ctx context.Context) {
	w.mu.Lock()
	channels := w.channels
	w.channels = nil
	w.mu.Unlock()

	for _, ch := range channels {
		if err := ch.Unsubscribe(ctx); err != nil {
			w.log.WithError(err).Warn("unsubscribe watch")
		}
	}
}
