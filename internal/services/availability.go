package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/database"
)

// AvailabilityChannel is the Redis Pub/Sub channel gift events travel on, so
// catalog views on every instance stay current.
const AvailabilityChannel = "gifts:availability"

const (
	EventGiftReserved = "reserved"
	EventGiftReleased = "released"
)

// AvailabilityEvent is the payload broadcast over Redis and WebSocket.
type AvailabilityEvent struct {
	Type      string    `json:"type"` // "reserved" or "released"
	GiftID    string    `json:"gift_id"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// AvailabilityPublisher publishes gift availability changes.
type AvailabilityPublisher interface {
	PublishAvailability(ctx context.Context, event AvailabilityEvent) error
}

// RedisAvailabilityPublisher publishes events to the shared Redis channel.
type RedisAvailabilityPublisher struct{}

func (RedisAvailabilityPublisher) PublishAvailability(ctx context.Context, event AvailabilityEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, AvailabilityChannel, data).Err()
}

// AvailabilityConn is the minimal interface our WebSocket implementation must satisfy.
type AvailabilityConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// feedConn serializes writes to one connection. gorilla/websocket supports a
// single concurrent writer, and fan-out goroutines for back-to-back events
// would otherwise race on WriteJSON.
type feedConn struct {
	mu   sync.Mutex
	dest AvailabilityConn
}

func (c *feedConn) write(event AvailabilityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dest.WriteJSON(event)
}

// availabilityHub is a registry of connected catalog viewers.
type availabilityHub struct {
	mu          sync.RWMutex
	connections map[string]*feedConn
}

var (
	feedHub            = &availabilityHub{connections: make(map[string]*feedConn)}
	feedSubscriberOnce sync.Once
)

// RegisterAvailabilityConn adds a connection to the hub and returns an
// unregister func for the handler's defer.
func RegisterAvailabilityConn(conn AvailabilityConn) func() {
	id := uuid.NewString()

	feedHub.mu.Lock()
	feedHub.connections[id] = &feedConn{dest: conn}
	feedHub.mu.Unlock()

	return func() {
		feedHub.mu.Lock()
		delete(feedHub.connections, id)
		feedHub.mu.Unlock()
	}
}

// FanOutAvailability sends an event to every local connection.
func FanOutAvailability(event AvailabilityEvent) {
	feedHub.mu.RLock()
	conns := make([]*feedConn, 0, len(feedHub.connections))
	for _, c := range feedHub.connections {
		conns = append(conns, c)
	}
	feedHub.mu.RUnlock()

	for _, conn := range conns {
		// Best-effort send; a slow viewer only delays its own feed.
		go func(c *feedConn) {
			if err := c.write(event); err != nil {
				log.Printf("error writing availability event to websocket: %v", err)
			}
		}(conn)
	}
}

// StartAvailabilitySubscriber ensures a single shared Redis listener per instance.
func StartAvailabilitySubscriber(ctx context.Context) {
	feedSubscriberOnce.Do(func() {
		go runAvailabilitySubscriber(ctx)
	})
}

func runAvailabilitySubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; availability subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, AvailabilityChannel)
			defer pubsub.Close()

			log.Printf("✅ Availability Redis subscriber started (channel: %s)", AvailabilityChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event AvailabilityEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal availability event: %v", err)
					continue
				}

				FanOutAvailability(event)
			}
		}()
	}
}
