package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"massa-adnet/internal/storage"
)

// Listener bridges the Redis change channel into an in-process hub, giving
// this context the signals other contexts broadcast. The context that made
// a change already saw its own synchronous event; Redis delivers pub/sub
// messages to every subscriber, so listeners may observe their own
// mutations a second time and must treat events as refresh hints, not as a
// mutation log.
type Listener struct {
	pubsub *redis.PubSub
	hub    storage.ChangePublisher
	done   chan struct{}
}

// NewListener subscribes to the signal channel and starts forwarding
// events until Close is called.
func NewListener(ctx context.Context, client *redis.Client, hub storage.ChangePublisher, signalKey string) *Listener {
	if signalKey == "" {
		signalKey = DefaultSignalKey
	}

	l := &Listener{
		pubsub: client.Subscribe(ctx, signalKey),
		hub:    hub,
		done:   make(chan struct{}),
	}
	go l.run(ctx)
	return l
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	ch := l.pubsub.Channel()
	for msg := range ch {
		var ev storage.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			continue
		}
		l.hub.Publish(ctx, ev)
	}
}

// Close unsubscribes and waits for the forwarding loop to stop.
func (l *Listener) Close() error {
	err := l.pubsub.Close()
	<-l.done
	return err
}
