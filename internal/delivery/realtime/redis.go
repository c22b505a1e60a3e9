package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultRelayChannel = "realtime:deliveries"

// envelope carries either a frame for UserID or, when ConnID is set, an
// eviction of every connection of UserID older than ConnID.
type envelope struct {
	UserID string `json:"user_id"`
	Frame  *Frame `json:"frame,omitempty"`
	ConnID string `json:"conn_id,omitempty"`
}

// RedisRelay fans frames out through a Redis pub/sub channel. Delivery is
// still best-effort: a frame published while nobody subscribes is gone.
type RedisRelay struct {
	client  *redis.Client
	channel string
	ready   chan struct{}
	log     logrus.FieldLogger
}

func NewRedisRelay(client *redis.Client, channel string, log logrus.FieldLogger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		ready:   make(chan struct{}),
		log:     log.WithField("component", "relay"),
	}
}

// Ready is closed once the subscription is confirmed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

func (r *RedisRelay) Publish(ctx context.Context, userID string, frame Frame) error {
	return r.publish(ctx, envelope{UserID: userID, Frame: &frame})
}

func (r *RedisRelay) Evict(ctx context.Context, userID, connID string) error {
	return r.publish(ctx, envelope{UserID: userID, ConnID: connID})
}

func (r *RedisRelay) publish(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func (r *RedisRelay) Run(ctx context.Context, h RelayHandler) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	close(r.ready)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.WithError(err).Warn("dropping malformed relay payload")
				continue
			}
			switch {
			case env.UserID == "":
				r.log.Warn("dropping relay payload without user")
			case env.ConnID != "":
				h.Evict(env.UserID, env.ConnID)
			case env.Frame != nil:
				h.Deliver(env.UserID, *env.Frame)
			default:
				r.log.WithField("user_id", env.UserID).Warn("dropping empty relay payload")
			}
		}
	}
}

// clearIfOwner deletes the presence key only if it still names the
// connection that is going away.
var clearIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPresence keeps presence:<userId> keys alive while a connection
// answers pings.
type RedisPresence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPresence(client *redis.Client, ttl time.Duration) *RedisPresence {
	return &RedisPresence{client: client, ttl: ttl}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (p *RedisPresence) Set(ctx context.Context, userID, connID string) error {
	return p.client.Set(ctx, presenceKey(userID), connID, p.ttl).Err()
}

func (p *RedisPresence) Clear(ctx context.Context, userID, connID string) error {
	return clearIfOwner.Run(ctx, p.client, []string{presenceKey(userID)}, connID).Err()
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
