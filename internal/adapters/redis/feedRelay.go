package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postfeed/internal/broadcast"
	"postfeed/internal/config"
	"postfeed/internal/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const (
	relayPrefix    = "feed:"
	relayQueueSize = 1024
)

type relayMessage struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	channel string
	data    []byte
}

// FeedRelay is a broadcast transport that delivers to the local sessions right
// away and republishes through Redis pub/sub, so viewers connected to other
// instances get the event too. One goroutine publishes, keeping commit order.
type FeedRelay struct {
	Client *redis.Client
	Local  broadcast.Transport
	origin string
	out    chan outbound
	ready  chan struct{}
}

func NewFeedRelay(client *redis.Client, local broadcast.Transport) *FeedRelay {
	return &FeedRelay{
		Client: client,
		Local:  local,
		origin: uuid.Must(uuid.NewV4()).String(),
		out:    make(chan outbound, relayQueueSize),
		ready:  make(chan struct{}),
	}
}

// Emit implements broadcast.Transport.
func (r *FeedRelay) Emit(topic string, payload []byte) {
	r.Local.Emit(topic, payload)

	data, err := json.Marshal(relayMessage{Origin: r.origin, Payload: payload})
	if err != nil {
		metrics.BroadcastDropped.WithLabelValues(metrics.DropEncode).Inc()
		config.Logger.Error("❌ Could not encode relay message", zap.String("topic", topic), zap.Error(err))
		return
	}
	select {
	case r.out <- outbound{channel: relayPrefix + topic, data: data}:
	default:
		metrics.BroadcastDropped.WithLabelValues(metrics.DropRelay).Inc()
		config.Logger.Warn("⚠️ Relay queue full, event stays local", zap.String("topic", topic))
	}
}

// Ready is closed once the Redis subscription is confirmed.
func (r *FeedRelay) Ready() <-chan struct{} { return r.ready }

// Run subscribes to every feed topic and pumps events both ways until ctx ends.
func (r *FeedRelay) Run(ctx context.Context) error {
	sub := r.Client.PSubscribe(ctx, relayPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe feed relay: %w", err)
	}
	close(r.ready)
	config.Logger.Info("🚀 Feed relay subscribed", zap.String("origin", r.origin))

	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("🛑 Feed relay stopped")
			return ctx.Err()

		case m := <-r.out:
			if err := r.Client.Publish(ctx, m.channel, m.data).Err(); err != nil {
				config.Logger.Warn("⚠️ Could not publish to relay", zap.String("channel", m.channel), zap.Error(err))
			}

		case msg, ok := <-in:
			if !ok {
				return errors.New("feed relay subscription closed")
			}
			r.deliver(msg)
		}
	}
}

func (r *FeedRelay) deliver(msg *redis.Message) {
	var m relayMessage
	if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
		config.Logger.Warn("⚠️ Malformed relay message", zap.String("channel", msg.Channel), zap.Error(err))
		return
	}
	if m.Origin == r.origin {
		return // already delivered locally
	}
	r.Local.Emit(strings.TrimPrefix(msg.Channel, relayPrefix), m.Payload)
}
