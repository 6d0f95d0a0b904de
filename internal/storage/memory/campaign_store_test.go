package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"massa-adnet/internal/domain"
	"massa-adnet/internal/storage"
)

func testInput(title string) domain.CreateCampaignInput {
	return domain.CreateCampaignInput{
		Title:        title,
		Description:  "desc",
		Category:     domain.CategoryTech,
		TargetURL:    "https://example.com",
		CreativeRef:  "https://example.com/a.png",
		PricingModel: domain.PricingPerClick,
		Rate:         0.5,
		Budget:       10,
	}
}

func TestCreate_AlwaysActiveAndOrdered(t *testing.T) {
	store := NewCampaignStore(nil)
	ctx := context.Background()

	first, err := store.Create(ctx, "AU1owner", testInput("first"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create(ctx, "AU1owner", testInput("second"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if first.Status != domain.StatusActive || second.Status != domain.StatusActive {
		t.Error("created campaigns must be active")
	}
	if second.ID != first.ID+1 {
		t.Errorf("expected sequential id, got %d after %d", second.ID, first.ID)
	}
	if first.Spent != 0 {
		t.Errorf("Spent = %v, want 0", first.Spent)
	}
	if first.CostPerClick == nil || *first.CostPerClick != 0.5 {
		t.Errorf("CostPerClick = %v", first.CostPerClick)
	}
	if first.CreatedAt != first.UpdatedAt {
		t.Error("CreatedAt must equal UpdatedAt on create")
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Title != "second" || list[1].Title != "first" {
		t.Errorf("expected newest-first ordering, got %+v", list)
	}
}

func TestCreate_IDsDisjointFromLedgerRange(t *testing.T) {
	store := NewCampaignStore(nil)

	c, err := store.Create(context.Background(), "AU1owner", testInput("x"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID <= 1<<32 {
		t.Errorf("first local id %d must sit above the u32 ledger range", c.ID)
	}
}

func TestCreate_CollisionResistantSequence(t *testing.T) {
	store := NewCampaignStore(nil)
	ctx := context.Background()

	seen := make(map[uint64]bool)
	for i := 0; i < 50; i++ {
		c, err := store.Create(ctx, "AU1owner", testInput("x"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate id %d", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestUpdate_NotFoundLeavesStoreUntouched(t *testing.T) {
	store := NewCampaignStore(nil)
	ctx := context.Background()

	created, _ := store.Create(ctx, "AU1owner", testInput("x"))

	title := "changed"
	_, err := store.Update(ctx, created.ID+999, domain.CampaignPatch{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 1 || list[0].Title != "x" {
		t.Errorf("store mutated by failed update: %+v", list)
	}
}

func TestUpdate_ForceStampsUpdatedAt(t *testing.T) {
	store := NewCampaignStore(nil)
	ctx := context.Background()

	base := time.UnixMilli(1_700_000_000_000)
	store.SetClock(func() time.Time { return base })
	created, _ := store.Create(ctx, "AU1owner", testInput("x"))

	store.SetClock(func() time.Time { return base.Add(5 * time.Second) })
	status := domain.StatusPaused
	updated, err := store.Update(ctx, created.ID, domain.CampaignPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Status != domain.StatusPaused {
		t.Errorf("Status = %v", updated.Status)
	}
	if updated.UpdatedAt != base.Add(5*time.Second).UnixMilli() {
		t.Errorf("UpdatedAt = %d, want force-stamped", updated.UpdatedAt)
	}
	if updated.CreatedAt != base.UnixMilli() {
		t.Errorf("CreatedAt changed: %d", updated.CreatedAt)
	}
	if updated.Title != "x" {
		t.Error("untouched fields must survive the merge")
	}
}

func TestChangeNotifications(t *testing.T) {
	hub := storage.NewHub()
	store := NewCampaignStore(hub)
	ctx := context.Background()

	events, cancel := hub.Subscribe()
	defer cancel()

	created, _ := store.Create(ctx, "AU1owner", testInput("x"))

	select {
	case ev := <-events:
		if ev.CampaignID != created.ID {
			t.Errorf("event campaign id = %d, want %d", ev.CampaignID, created.ID)
		}
		if ev.Timestamp == 0 {
			t.Error("event timestamp missing")
		}
	case <-time.After(time.Second):
		t.Fatal("no change event after create")
	}

	status := domain.StatusStopped
	if _, err := store.Update(ctx, created.ID, domain.CampaignPatch{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	select {
	case ev := <-events:
		if ev.CampaignID != created.ID {
			t.Errorf("event campaign id = %d, want %d", ev.CampaignID, created.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no change event after update")
	}
}

func TestCountByOwnerAndAggregate(t *testing.T) {
	store := NewCampaignStore(nil)
	ctx := context.Background()

	in := testInput("a")
	in.Budget = 10
	if _, err := store.Create(ctx, "AU1alice", in); err != nil {
		t.Fatal(err)
	}
	in.Budget = 5
	if _, err := store.Create(ctx, "AU1alice", in); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "AU1bob", in); err != nil {
		t.Fatal(err)
	}

	if n, _ := store.CountByOwner(ctx, "AU1alice"); n != 2 {
		t.Errorf("CountByOwner(alice) = %d, want 2", n)
	}
	if n, _ := store.CountByOwner(ctx, ""); n != 3 {
		t.Errorf("CountByOwner(all) = %d, want 3", n)
	}

	profile, err := store.HosterAggregate(ctx, "AU1alice")
	if err != nil {
		t.Fatalf("HosterAggregate: %v", err)
	}
	if profile.TotalBudget != 15 || profile.ActiveCampaigns != 2 {
		t.Errorf("aggregate: %+v", profile)
	}
	if profile.Address != "AU1alice" {
		t.Errorf("Address = %q", profile.Address)
	}
}
