package gateway

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"massa-adnet/internal/massa"
	"massa-adnet/internal/storage"
)

// EventBridge forwards contract output events into the local change hub
// so open contexts refresh when the ledger mutates campaign state.
type EventBridge struct {
	subscriber massa.EventSubscriber
	hub        *storage.Hub
	logger     *log.Logger
	contract   string
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewEventBridge creates a bridge from the subscriber to the hub,
// filtered to events emitted by the given contract.
func NewEventBridge(subscriber massa.EventSubscriber, hub *storage.Hub, contract string, logger *log.Logger) *EventBridge {
	return &EventBridge{
		subscriber: subscriber,
		hub:        hub,
		logger:     logger,
		contract:   contract,
		done:       make(chan struct{}),
	}
}

// Start subscribes and forwards events until Stop or context cancel.
func (b *EventBridge) Start(ctx context.Context) error {
	events, err := b.subscriber.SubscribeEvents(ctx, massa.EventFilter{
		EmitterAddress: b.contract,
	})
	if err != nil {
		return err
	}

	ctx, b.cancel = context.WithCancel(ctx)
	go b.run(ctx, events)
	return nil
}

func (b *EventBridge) run(ctx context.Context, events <-chan massa.ContractEvent) {
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if b.logger != nil {
					b.logger.Printf("[gateway] event subscription closed")
				}
				return
			}
			// Events may arrive before finality; receipt time is good
			// enough for a refresh signal.
			b.hub.Publish(ctx, storage.ChangeEvent{
				Timestamp:  time.Now().UnixMilli(),
				CampaignID: campaignIDFromEvent(ev.Data),
			})
		}
	}
}

// Stop ends forwarding and waits for the run loop to exit.
func (b *EventBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	<-b.done
}

// campaignIDFromEvent extracts a campaign identifier from event payloads
// of the form "SOMETHING:<id>". Unparseable payloads yield zero, which
// subscribers treat as "refresh everything".
func campaignIDFromEvent(data string) uint64 {
	idx := strings.LastIndexByte(data, ':')
	if idx < 0 || idx == len(data)-1 {
		return 0
	}
	id, err := strconv.ParseUint(data[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
