package gateway

import (
	"context"
	"testing"
	"time"

	"massa-adnet/internal/massa"
	"massa-adnet/internal/storage"
)

type fakeSubscriber struct {
	ch     chan massa.ContractEvent
	filter massa.EventFilter
}

func (f *fakeSubscriber) SubscribeEvents(_ context.Context, filter massa.EventFilter) (<-chan massa.ContractEvent, error) {
	f.filter = filter
	return f.ch, nil
}

func (f *fakeSubscriber) Close() error {
	close(f.ch)
	return nil
}

func TestEventBridge_ForwardsToHub(t *testing.T) {
	sub := &fakeSubscriber{ch: make(chan massa.ContractEvent, 1)}
	hub := storage.NewHub()

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	bridge := NewEventBridge(sub, hub, "AS1contract", discardLogger())
	if err := bridge.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer bridge.Stop()

	if sub.filter.EmitterAddress != "AS1contract" {
		t.Errorf("bridge must filter by contract, got %+v", sub.filter)
	}

	sub.ch <- massa.ContractEvent{Data: "CAMPAIGN_UPDATED:42"}

	select {
	case ev := <-events:
		if ev.CampaignID != 42 {
			t.Errorf("expected campaign 42, got %d", ev.CampaignID)
		}
		if ev.Timestamp == 0 {
			t.Error("expected a receipt timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("no change event forwarded")
	}
}

func TestCampaignIDFromEvent(t *testing.T) {
	cases := []struct {
		data string
		want uint64
	}{
		{"CAMPAIGN_CREATED:17", 17},
		{"PAYOUT:dev:9", 9},
		{"no-id-here", 0},
		{"trailing:", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := campaignIDFromEvent(c.data); got != c.want {
			t.Errorf("campaignIDFromEvent(%q) = %d, want %d", c.data, got, c.want)
		}
	}
}
