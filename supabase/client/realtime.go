package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RealtimeClient handles Supabase Realtime (Phoenix channel) subscriptions.
type RealtimeClient struct {
	mu       sync.RWMutex
	url      string
	apiKey   string
	conn     *websocket.Conn
	channels map[string]*Channel
	handlers map[string][]EventHandler
	done     chan struct{}
	ref      int
}

// EventHandler handles realtime events.
type EventHandler func(event *RealtimeEvent)

// RealtimeEvent is one message on a channel.
type RealtimeEvent struct {
	Event   string         `json:"event"`
	Topic   string         `json:"topic"`
	Payload map[string]any `json:"payload"`
	Ref     string         `json:"ref"`
	JoinRef string         `json:"join_ref,omitempty"`
}

// Record decodes the changed row carried by a postgres_changes event.
func (e *RealtimeEvent) Record(v any) error {
	data, ok := e.Payload["data"].(map[string]any)
	if !ok {
		return fmt.Errorf("event carries no data payload")
	}
	record, ok := data["record"]
	if !ok {
		return fmt.Errorf("event carries no record")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Channel represents one subscribed topic.
type Channel struct {
	client  *RealtimeClient
	topic   string
	config  *PostgresChangesConfig
	joined  bool
	joinRef string
}

// NewRealtimeClient creates a realtime client for a Supabase project URL.
func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	wsURL := supabaseURL
	if strings.HasPrefix(wsURL, "https") {
		wsURL = "wss" + wsURL[len("https"):]
	} else if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + wsURL[len("http"):]
	}
	wsURL += "/realtime/v1/websocket?apikey=" + apiKey + "&vsn=1.0.0"

	return &RealtimeClient{
		url:      wsURL,
		apiKey:   apiKey,
		channels: make(map[string]*Channel),
		handlers: make(map[string][]EventHandler),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (r *RealtimeClient) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	r.conn = conn
	r.done = make(chan struct{})

	go r.handleMessages()
	go r.heartbeat()

	return nil
}

// Disconnect closes the WebSocket connection.
func (r *RealtimeClient) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}

	close(r.done)

	err := r.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	r.conn.Close()
	r.conn = nil
	if err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return nil
}

// PostgresChangesConfig selects the database changes to watch.
type PostgresChangesConfig struct {
	Event  string // INSERT, UPDATE, DELETE or *
	Schema string
	Table  string
	Filter string // optional, e.g. "id=eq.<uuid>"
}

// SubscribeToPostgresChanges joins a channel watching database changes and
// registers the handler for matching events.
func (r *RealtimeClient) SubscribeToPostgresChanges(ctx context.Context, cfg PostgresChangesConfig, handler EventHandler) (*Channel, error) {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.Event == "" {
		cfg.Event = "*"
	}

	topic := fmt.Sprintf("realtime:%s:%s", cfg.Schema, cfg.Table)
	if cfg.Filter != "" {
		topic += ":" + cfg.Filter
	}

	r.mu.Lock()
	ch, ok := r.channels[topic]
	if !ok {
		ch = &Channel{client: r, topic: topic, config: &cfg}
		r.channels[topic] = ch
	}
	key := topic + ":postgres_changes"
	r.handlers[key] = append(r.handlers[key], handler)
	r.mu.Unlock()

	if err := ch.Subscribe(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

// Subscribe joins the channel's topic.
func (c *Channel) Subscribe(ctx context.Context) error {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()

	if c.joined {
		return nil
	}
	if c.client.conn == nil {
		return fmt.Errorf("realtime not connected")
	}

	c.client.ref++
	ref := fmt.Sprintf("%d", c.client.ref)
	c.joinRef = ref

	payload := map[string]any{}
	if c.config != nil {
		payload["config"] = map[string]any{
			"postgres_changes": []map[string]any{{
				"event":  c.config.Event,
				"schema": c.config.Schema,
				"table":  c.config.Table,
				"filter": c.config.Filter,
			}},
		}
	}

	msg := map[string]any{
		"topic":    c.topic,
		"event":    "phx_join",
		"payload":  payload,
		"ref":      ref,
		"join_ref": ref,
	}

	if err := c.client.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	c.joined = true
	return nil
}

// Unsubscribe leaves the channel's topic and drops its handlers.
func (c *Channel) Unsubscribe(ctx context.Context) error {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()

	if !c.joined {
		return nil
	}

	c.client.ref++
	ref := fmt.Sprintf("%d", c.client.ref)

	msg := map[string]any{
		"topic":    c.topic,
		"event":    "phx_leave",
		"payload":  map[string]any{},
		"ref":      ref,
		"join_ref": c.joinRef,
	}

	var writeErr error
	if c.client.conn != nil {
		writeErr = c.client.conn.WriteJSON(msg)
	}

	c.joined = false
	delete(c.client.channels, c.topic)
	delete(c.client.handlers, c.topic+":postgres_changes")

	if writeErr != nil {
		return fmt.Errorf("send leave: %w", writeErr)
	}
	return nil
}

func (r *RealtimeClient) handleMessages() {
	for {
		select {
		case <-r.done:
			return
		default:
		}

		r.mu.RLock()
		conn := r.conn
		r.mu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event RealtimeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}

		r.dispatchEvent(&event)
	}
}

func (r *RealtimeClient) dispatchEvent(event *RealtimeEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := r.handlers[event.Topic+":"+event.Event]
	for _, handler := range handlers {
		go handler(event)
	}
}

func (r *RealtimeClient) heartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.conn != nil {
				r.ref++
				msg := map[string]any{
					"topic":   "phoenix",
					"event":   "heartbeat",
					"payload": map[string]any{},
					"ref":     fmt.Sprintf("%d", r.ref),
				}
				r.conn.WriteJSON(msg)
			}
			r.mu.Unlock()
		}
	}
}
