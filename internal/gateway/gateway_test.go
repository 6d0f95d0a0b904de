package gateway

import (
	"context"
	"errors"
	"log"
	"math"
	"testing"
	"time"

	"massa-adnet/internal/args"
	"massa-adnet/internal/domain"
	"massa-adnet/internal/massa/stub"
	"massa-adnet/internal/storage/memory"
	"massa-adnet/internal/units"
	"massa-adnet/internal/wire"
)

func discardLogger() *log.Logger {
	return log.New(nopWriter{}, "", 0)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func testCreateInput(title string, category domain.Category) domain.CreateCampaignInput {
	return domain.CreateCampaignInput{
		Title:        title,
		Description:  "desc",
		Category:     category,
		TargetURL:    "https://example.com",
		CreativeRef:  "https://cdn.example.com/ad.png",
		PricingModel: domain.PricingPerClick,
		Rate:         0.25,
		Budget:       50,
	}
}

func ledgerCampaign(id uint64, title string, category domain.Category, createdAt int64) domain.Campaign {
	rate := 0.5
	return domain.Campaign{
		ID:           id,
		Owner:        "AU1owner",
		Title:        title,
		Description:  "on-chain",
		Category:     category,
		TargetURL:    "https://example.com",
		CreativeRef:  "https://cdn.example.com/ad.png",
		ImageURL:     "https://cdn.example.com/ad.png",
		PricingModel: domain.PricingPerClick,
		CostPerClick: &rate,
		Budget:       100,
		Status:       domain.StatusActive,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func newLocalGateway(t *testing.T) (*Gateway, *memory.CampaignStore) {
	t.Helper()
	store := memory.NewCampaignStore(nil)
	g := New(store, WithLogger(discardLogger()), WithSimulatedLatency(0))
	return g, store
}

func newLedgerGateway(t *testing.T) (*Gateway, *stub.RPCClient, *memory.CampaignStore) {
	t.Helper()
	store := memory.NewCampaignStore(nil)
	rpc := stub.NewRPCClient()
	g := New(store,
		WithLedger(rpc), WithCaller(rpc),
		WithLogger(discardLogger()), WithSimulatedLatency(0))
	return g, rpc, store
}

func TestFetchCampaigns_Unconfigured_ServesLocal(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("first", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Create(ctx, "AU1b", testCreateInput("second", domain.CategoryGaming)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	all, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("FetchCampaigns: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(all))
	}
	if all[0].Title != "second" {
		t.Errorf("expected newest first, got %q", all[0].Title)
	}

	tech, err := g.FetchCampaigns(ctx, domain.CampaignFilters{Category: domain.CategoryTech})
	if err != nil {
		t.Fatalf("FetchCampaigns: %v", err)
	}
	if len(tech) != 1 || tech[0].Title != "first" {
		t.Errorf("category filter failed: %+v", tech)
	}
}

func TestFetchCampaigns_LedgerPreferred(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("local", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	onChain := []domain.Campaign{
		ledgerCampaign(1, "chain-old", domain.CategoryTech, 1_000),
		ledgerCampaign(2, "chain-new", domain.CategoryTech, 2_000),
	}
	rpc.SetResponse(wire.FnListCampaigns, wire.EncodeCampaignList(onChain))

	got, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("FetchCampaigns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected ledger data, got %d records", len(got))
	}
	if got[0].Title != "chain-new" || got[1].Title != "chain-old" {
		t.Errorf("expected newest-first ledger data, got %q then %q", got[0].Title, got[1].Title)
	}
}

func TestFetchCampaigns_EmptyLedgerServesLocal(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("local", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rpc.SetResponse(wire.FnListCampaigns, wire.EncodeCampaignList(nil))

	got, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("FetchCampaigns: %v", err)
	}
	if len(got) != 1 || got[0].Title != "local" {
		t.Errorf("empty ledger should serve local campaigns, got %+v", got)
	}
}

func TestFetchCampaigns_ReadFailureFallsBack(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("survivor", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rpc.ReadErrs[wire.FnListCampaigns] = errors.New("connection refused")

	got, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("read failure must not propagate: %v", err)
	}
	if len(got) != 1 || got[0].Title != "survivor" {
		t.Errorf("expected local fallback, got %+v", got)
	}
}

func TestFetchCampaigns_MalformedResponseFallsBack(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("survivor", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// A count prefix promising records the buffer does not hold.
	rpc.SetResponse(wire.FnListCampaigns, args.New().AddU32(5).Bytes())

	got, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("malformed response must not propagate: %v", err)
	}
	if len(got) != 1 || got[0].Title != "survivor" {
		t.Errorf("expected local fallback, got %+v", got)
	}
}

func TestFetchCampaigns_OversizedCountFallsBack(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1a", testCreateInput("survivor", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// The worst-case count prefix must decode-fail, not allocate.
	rpc.SetResponse(wire.FnListCampaigns, args.New().AddU32(0xFFFFFFFF).Bytes())

	got, err := g.FetchCampaigns(ctx, domain.CampaignFilters{})
	if err != nil {
		t.Fatalf("oversized count must not propagate: %v", err)
	}
	if len(got) != 1 || got[0].Title != "survivor" {
		t.Errorf("expected local fallback, got %+v", got)
	}
}

func TestFetchCampaignByID_LocalIDSkipsLedger(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "AU1a", testCreateInput("local-only", domain.CategoryTech))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created.ID <= math.MaxUint32 {
		t.Fatalf("local ids must sit above the u32 range, got %d", created.ID)
	}

	c, err := g.FetchCampaignByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchCampaignByID: %v", err)
	}
	if c.Title != "local-only" {
		t.Errorf("expected stored campaign, got %+v", c)
	}
	if n := len(rpc.Reads()); n != 0 {
		t.Errorf("local id must not reach the ledger, got %d reads", n)
	}
}

func TestWrites_LocalIDRejected(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)
	ctx := context.Background()
	localID := uint64(math.MaxUint32) + 7

	if _, err := g.UpdateCampaignStatus(ctx, localID, domain.StatusPaused); !errors.Is(err, ErrLocalID) {
		t.Errorf("UpdateCampaignStatus: expected ErrLocalID, got %v", err)
	}
	if _, err := g.UpdateCampaignDetails(ctx, localID, domain.UpdateCampaignDetailsInput{Title: "x"}); !errors.Is(err, ErrLocalID) {
		t.Errorf("UpdateCampaignDetails: expected ErrLocalID, got %v", err)
	}
	if _, err := g.DeleteCampaign(ctx, localID); !errors.Is(err, ErrLocalID) {
		t.Errorf("DeleteCampaign: expected ErrLocalID, got %v", err)
	}
	if n := len(rpc.Calls()); n != 0 {
		t.Errorf("rejected writes must not reach the ledger, got %d calls", n)
	}
}

func TestRecordClick_LocalIDIncrementsLocally(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "AU1a", testCreateInput("local-only", domain.CategoryTech))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := g.RecordClick(ctx, created.ID); err != nil {
		t.Fatalf("RecordClick: %v", err)
	}

	c, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Clicks != 1 {
		t.Errorf("expected local increment, got %d clicks", c.Clicks)
	}
	if n := len(rpc.Calls()); n != 0 {
		t.Errorf("local id must not reach the ledger, got %d calls", n)
	}
}

func TestFetchCampaignByID_PlaceholderSentinel(t *testing.T) {
	g, _ := newLocalGateway(t)

	c, err := g.FetchCampaignByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("FetchCampaignByID: %v", err)
	}
	if c.Title != "" {
		t.Errorf("placeholder title must be empty, got %q", c.Title)
	}
	if c.ID != 404 {
		t.Errorf("placeholder keeps the requested id, got %d", c.ID)
	}
}

func TestFetchCampaignByID_LocalHit(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "AU1a", testCreateInput("findable", domain.CategoryTech))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, err := g.FetchCampaignByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchCampaignByID: %v", err)
	}
	if c.Title != "findable" {
		t.Errorf("expected stored campaign, got %+v", c)
	}
}

func TestFetchHosterProfile_LocalAggregate(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "AU1me", testCreateInput("a", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Create(ctx, "AU1me", testCreateInput("b", domain.CategoryTech)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := g.FetchHosterProfile(ctx, "AU1me")
	if err != nil {
		t.Fatalf("FetchHosterProfile: %v", err)
	}
	if p.ActiveCampaigns != 2 {
		t.Errorf("expected 2 active campaigns, got %d", p.ActiveCampaigns)
	}
	if p.TotalBudget != 100 {
		t.Errorf("expected summed budget 100, got %v", p.TotalBudget)
	}
}

func TestFetchDeveloperProfile_ZeroedFallback(t *testing.T) {
	g, _ := newLocalGateway(t)

	p, err := g.FetchDeveloperProfile(context.Background(), "AU1dev")
	if err != nil {
		t.Fatalf("FetchDeveloperProfile: %v", err)
	}
	if p.Address != "AU1dev" || p.PendingPayout != 0 || p.Reputation != 0 {
		t.Errorf("expected zeroed profile with address, got %+v", p)
	}
}

func TestFetchPlatformStats_ZeroedFallback(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)
	rpc.ReadErrs[wire.FnGetPlatformStats] = errors.New("timeout")

	s, err := g.FetchPlatformStats(context.Background())
	if err != nil {
		t.Fatalf("FetchPlatformStats: %v", err)
	}
	if s.Campaigns != 0 || s.LockedBudget != 0 {
		t.Errorf("expected zeroed stats, got %+v", s)
	}
}

func TestCreateCampaign_UnconfiguredWritesThrough(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	c, opID, err := g.CreateCampaign(ctx, "AU1me", testCreateInput("demo", domain.CategoryTech))
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if opID != "" {
		t.Errorf("simulated create has no operation id, got %q", opID)
	}
	if c == nil || c.Status != domain.StatusActive {
		t.Fatalf("expected stored active campaign, got %+v", c)
	}

	stored, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("campaign should be persisted locally: %v", err)
	}
	if stored.Title != "demo" {
		t.Errorf("unexpected stored campaign %+v", stored)
	}
}

func TestCreateCampaign_ConfiguredEconomics(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)

	in := testCreateInput("paid", domain.CategoryTech)
	in.Budget = 50

	_, opID, err := g.CreateCampaign(context.Background(), "AU1me", in)
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if opID != "O1stub" {
		t.Errorf("expected stubbed operation id, got %q", opID)
	}

	call := rpc.LastCall()
	if call == nil {
		t.Fatal("expected a recorded call")
	}
	if call.Function != wire.FnCreateCampaign {
		t.Errorf("unexpected function %q", call.Function)
	}
	if call.Coins != units.ToBaseUnits("50") {
		t.Errorf("coins should match the budget, got %d", call.Coins)
	}
	if call.Fee != CreateFee {
		t.Errorf("create uses its own fee, got %d", call.Fee)
	}
	if call.MaxGas != DefaultMaxGas {
		t.Errorf("unexpected max gas %d", call.MaxGas)
	}
}

func TestConfiguredEconomics_Overrides(t *testing.T) {
	store := memory.NewCampaignStore(nil)
	rpc := stub.NewRPCClient()
	g := New(store,
		WithLedger(rpc), WithCaller(rpc),
		WithFees(units.ToBaseUnits("0.03"), units.ToBaseUnits("0.07")),
		WithMaxGas(90_000_000),
		WithLogger(discardLogger()), WithSimulatedLatency(0))
	ctx := context.Background()

	if _, err := g.RegisterHoster(ctx, domain.RegisterHosterInput{Name: "n"}); err != nil {
		t.Fatalf("RegisterHoster: %v", err)
	}
	call := rpc.LastCall()
	if call.Fee != units.ToBaseUnits("0.03") {
		t.Errorf("default fee override not applied, got %d", call.Fee)
	}
	if call.MaxGas != 90_000_000 {
		t.Errorf("max gas override not applied, got %d", call.MaxGas)
	}

	if _, _, err := g.CreateCampaign(ctx, "AU1me", testCreateInput("paid", domain.CategoryTech)); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	call = rpc.LastCall()
	if call.Fee != units.ToBaseUnits("0.07") {
		t.Errorf("create fee override not applied, got %d", call.Fee)
	}
	if call.MaxGas != 90_000_000 {
		t.Errorf("max gas override not applied on create, got %d", call.MaxGas)
	}
}

func TestCreateCampaign_MinimumCoinsFloor(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)

	in := testCreateInput("tiny", domain.CategoryTech)
	in.Budget = 0

	if _, _, err := g.CreateCampaign(context.Background(), "AU1me", in); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	call := rpc.LastCall()
	if call.Coins != MinCreateCoins {
		t.Errorf("zero budget should send the floor, got %d", call.Coins)
	}
}

func TestWrites_UnauthenticatedPreflight(t *testing.T) {
	store := memory.NewCampaignStore(nil)
	rpc := stub.NewRPCClient()
	// Ledger configured, but no caller.
	g := New(store, WithLedger(rpc), WithLogger(discardLogger()), WithSimulatedLatency(0))
	ctx := context.Background()

	if _, err := g.RegisterHoster(ctx, domain.RegisterHosterInput{Name: "n"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("RegisterHoster: expected ErrUnauthenticated, got %v", err)
	}
	if _, _, err := g.CreateCampaign(ctx, "AU1me", testCreateInput("x", domain.CategoryTech)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("CreateCampaign: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := g.UpdateCampaignStatus(ctx, 1, domain.StatusPaused); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("UpdateCampaignStatus: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := g.ClaimDeveloperEarnings(ctx); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ClaimDeveloperEarnings: expected ErrUnauthenticated, got %v", err)
	}
	if len(rpc.Calls()) != 0 {
		t.Errorf("pre-flight failures must not reach the network, got %d calls", len(rpc.Calls()))
	}
}

func TestWriteFailure_Propagates(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)
	rpc.CallErrs[wire.FnUpdateCampaignStatus] = errors.New("Rate too low")

	_, err := g.UpdateCampaignStatus(context.Background(), 7, domain.StatusPaused)
	if err == nil {
		t.Fatal("write failures must propagate")
	}
	if Hint(err) != "The rate you entered is too low. Please enter a higher rate." {
		t.Errorf("unexpected hint %q", Hint(err))
	}
}

func TestUpdateCampaignStatus_EncodesWireArguments(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)

	if _, err := g.UpdateCampaignStatus(context.Background(), 9, domain.StatusStopped); err != nil {
		t.Fatalf("UpdateCampaignStatus: %v", err)
	}

	call := rpc.LastCall()
	r := args.NewReader(call.Parameter)
	id, err := r.NextU32()
	if err != nil || id != 9 {
		t.Errorf("expected encoded id 9, got %d (%v)", id, err)
	}
	status, err := r.NextString()
	if err != nil || status != "stopped" {
		t.Errorf("expected encoded status stopped, got %q (%v)", status, err)
	}
	if call.Fee != DefaultFee {
		t.Errorf("expected default fee, got %d", call.Fee)
	}
}

func TestTriggerScheduledPayouts_DefaultBatch(t *testing.T) {
	g, rpc, _ := newLedgerGateway(t)

	if _, err := g.TriggerScheduledPayouts(context.Background(), 0); err != nil {
		t.Fatalf("TriggerScheduledPayouts: %v", err)
	}

	call := rpc.LastCall()
	r := args.NewReader(call.Parameter)
	batch, err := r.NextU32()
	if err != nil || batch != DefaultPayoutBatch {
		t.Errorf("expected default batch %d, got %d (%v)", DefaultPayoutBatch, batch, err)
	}
}

func TestRecordImpression_LocalIncrement(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "AU1me", testCreateInput("viewed", domain.CategoryTech))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := g.RecordImpression(ctx, created.ID); err != nil {
		t.Fatalf("RecordImpression: %v", err)
	}

	got, _ := store.GetByID(ctx, created.ID)
	if got.Impressions != 1 {
		t.Errorf("expected 1 impression, got %d", got.Impressions)
	}
}

func TestRecordClick_AccruesSpendCappedAtBudget(t *testing.T) {
	g, store := newLocalGateway(t)
	ctx := context.Background()

	in := testCreateInput("clicky", domain.CategoryTech)
	in.Rate = 30
	in.Budget = 50
	created, err := store.Create(ctx, "AU1me", in)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := g.RecordClick(ctx, created.ID); err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}

	got, _ := store.GetByID(ctx, created.ID)
	if got.Clicks != 3 {
		t.Errorf("expected 3 clicks, got %d", got.Clicks)
	}
	if got.Spent != 50 {
		t.Errorf("spend must cap at budget, got %v", got.Spent)
	}
}

func TestRecordClick_ConfiguredFireAndForget(t *testing.T) {
	g, rpc, store := newLedgerGateway(t)
	ctx := context.Background()

	rpc.CallErrs[wire.FnRecordClick] = errors.New("node down")

	if err := g.RecordClick(ctx, 11); err != nil {
		t.Fatalf("ledger record errors must be swallowed: %v", err)
	}
	if len(rpc.Calls()) != 1 {
		t.Errorf("expected one fire-and-forget call, got %d", len(rpc.Calls()))
	}

	// The local store is untouched on the ledger path.
	if n, _ := store.CountByOwner(ctx, ""); n != 0 {
		t.Errorf("ledger path must not write locally, got %d records", n)
	}
}

func TestRecordImpression_UnknownCampaignIsNoop(t *testing.T) {
	g, _ := newLocalGateway(t)

	if err := g.RecordImpression(context.Background(), 999); err != nil {
		t.Fatalf("unknown campaign must be a no-op, got %v", err)
	}
}

func TestSimulatedLatency_RespectsContext(t *testing.T) {
	store := memory.NewCampaignStore(nil)
	g := New(store, WithLogger(discardLogger()), WithSimulatedLatency(10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.RegisterHoster(ctx, domain.RegisterHosterInput{Name: "n"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancel should interrupt the simulated delay")
	}
}
