// Package broadcast is the process-wide publish point for feed changes.
//
// The channel is created once with Init and handed to whoever publishes. There
// is no package-level handle, so nothing can publish before Init has returned.
package broadcast

import (
	"errors"
	"sync/atomic"

	"postfeed/internal/config"
	"postfeed/internal/metrics"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	ErrAlreadyInitialized = errors.New("broadcast: channel already initialized")
	ErrNilTransport       = errors.New("broadcast: nil transport")
)

var initialized atomic.Bool

// Transport delivers an encoded event to the sessions subscribed to topic.
// Emit must not block on slow sessions.
type Transport interface {
	Emit(topic string, payload []byte)
}

type Channel struct {
	transport Transport
}

// Init binds the channel to its transport. It succeeds once per process.
func Init(t Transport) (*Channel, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	if !initialized.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}
	return &Channel{transport: t}, nil
}

// Publish encodes event once and hands it to the transport. Delivery is fire
// and forget: the caller never sees per-session failures.
func (c *Channel) Publish(topic string, event any) {
	if c == nil || c.transport == nil {
		panic("broadcast: Publish called before Init")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.BroadcastDropped.WithLabelValues(metrics.DropEncode).Inc()
		config.Logger.Error("❌ Could not encode feed event", zap.String("topic", topic), zap.Error(err))
		return
	}
	c.transport.Emit(topic, payload)
}
