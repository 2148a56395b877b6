package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces per-device pub/sub channels.
const ChannelPrefix = "device:events:"

// ChannelFor returns the pub/sub channel carrying events of deviceID.
func ChannelFor(deviceID string) string {
	return ChannelPrefix + deviceID
}

// RedisPublisher publishes events so every instance's Hub can serve live feeds.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ChannelFor(e.DeviceID), data).Err()
}

// RunRedisSubscriber forwards every device event seen on Redis into local until ctx ends.
// A broken subscription is re-established with capped exponential backoff.
func RunRedisSubscriber(ctx context.Context, client *redis.Client, local Publisher) {
	if client == nil {
		log.Println("Redis client not initialized; event subscriber not started")
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
			pubsub := client.PSubscribe(ctx, ChannelPrefix+"*")
			defer pubsub.Close()

			log.Printf("✅ Event Redis subscriber started (pattern: %s*)", ChannelPrefix)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Redis subscriber error: %v", err)
					sleep(ctx, backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				e, ok := decodeMessage(msg.Channel, msg.Payload)
				if !ok {
					continue
				}
				_ = local.Publish(ctx, e)
			}
		}()
	}
}

// decodeMessage parses a pub/sub payload, ignoring messages whose channel and body disagree.
func decodeMessage(channel, payload string) (Event, bool) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		log.Printf("failed to unmarshal device event: %v", err)
		return Event{}, false
	}
	if e.DeviceID == "" || strings.TrimPrefix(channel, ChannelPrefix) != e.DeviceID {
		return Event{}, false
	}
	return e, true
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
