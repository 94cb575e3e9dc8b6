// Package mq carries state-change snapshots from the services to live
// subscribers. Publishing is fire-and-forget: a failed emit is logged and
// the business transaction that triggered it is never affected.
package mq

import (
	"context"
	"encoding/json"
	"log"

	"homevia/livefeed"
	"homevia/rdx"
)

const feedChannel = "feed-events"

// Event is the envelope published on the Redis channel.
type Event struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Emitter is the publish side of the live feed. Injected into the
// services so tests can swap in a recorder.
type Emitter interface {
	Emit(ctx context.Context, topic string, payload any)
}

// RedisEmitter publishes events to the shared Redis channel, from which
// the feed worker forwards them to websocket subscribers. Going through
// Redis lets multiple server processes share one feed.
type RedisEmitter struct{}

func NewRedisEmitter() *RedisEmitter {
	return &RedisEmitter{}
}

func (e *RedisEmitter) Emit(ctx context.Context, topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Emit] Failed to marshal payload for %q: %v", topic, err)
		return
	}

	data, err := json.Marshal(Event{Topic: topic, Payload: body})
	if err != nil {
		log.Printf("[Emit] Failed to marshal event for %q: %v", topic, err)
		return
	}

	if err := rdx.Conn.Publish(ctx, feedChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish event to Redis: %v", err)
	}
}

// StartFeedWorker subscribes to the Redis channel and pushes every event
// into the websocket feed. Runs until the process exits.
func StartFeedWorker(feed *livefeed.Feed) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, feedChannel)
	ch := sub.Channel()

	log.Println("[FeedWorker] Listening for feed events...")

	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[FeedWorker] Failed to parse event: %v", err)
			continue
		}
		feed.Publish(event.Topic, event.Payload)
	}
}
