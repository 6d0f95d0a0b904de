// Package gateway is the façade over the campaign ledger and the local
// fallback store. Per operation it decides which source to hit, merges
// and filters results, and normalizes read failures into best-effort
// fallback values.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"massa-adnet/internal/args"
	"massa-adnet/internal/domain"
	"massa-adnet/internal/massa"
	"massa-adnet/internal/observability"
	"massa-adnet/internal/storage"
	"massa-adnet/internal/units"
	"massa-adnet/internal/wire"
)

// Call economics. Fees are in base units.
var (
	// DefaultFee covers every call except campaign creation.
	DefaultFee = units.ToBaseUnits("0.02")
	// CreateFee covers campaign creation, which locks storage.
	CreateFee = units.ToBaseUnits("0.05")
)

const (
	// DefaultMaxGas caps execution gas for every call.
	DefaultMaxGas uint64 = 160_000_000

	// MinCreateCoins is the smallest attached value accepted on create.
	MinCreateCoins uint64 = 1_000

	// DefaultListLimit bounds one campaign list read.
	DefaultListLimit uint32 = 200

	// DefaultPayoutBatch is the payout batch size.
	DefaultPayoutBatch uint32 = 25

	// DefaultSimulatedLatency keeps unconfigured writes from resolving
	// instantly, so flows behave like a real submission.
	DefaultSimulatedLatency = 600 * time.Millisecond
)

// Gateway routes campaign operations between the ledger and the local
// fallback store.
type Gateway struct {
	reader massa.Reader
	caller massa.Caller
	store  storage.CampaignStore
	logger *log.Logger

	defaultFee  uint64
	createFee   uint64
	maxGas      uint64
	listLimit   uint32
	payoutBatch uint32
	latency     time.Duration
	now         func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLedger sets the ledger read client. An unset reader routes every
// operation to the fallback store.
func WithLedger(r massa.Reader) Option {
	return func(g *Gateway) {
		g.reader = r
	}
}

// WithCaller sets the signing write client. Configured writes without a
// caller fail with ErrUnauthenticated.
func WithCaller(c massa.Caller) Option {
	return func(g *Gateway) {
		g.caller = c
	}
}

// WithLogger sets the warning logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// WithFees overrides the per-call fees, in base units.
func WithFees(defaultFee, createFee uint64) Option {
	return func(g *Gateway) {
		g.defaultFee = defaultFee
		g.createFee = createFee
	}
}

// WithMaxGas overrides the gas ceiling attached to every call.
func WithMaxGas(maxGas uint64) Option {
	return func(g *Gateway) {
		g.maxGas = maxGas
	}
}

// WithListLimit overrides the campaign list read limit.
func WithListLimit(limit uint32) Option {
	return func(g *Gateway) {
		g.listLimit = limit
	}
}

// WithPayoutBatch overrides the payout batch size.
func WithPayoutBatch(n uint32) Option {
	return func(g *Gateway) {
		g.payoutBatch = n
	}
}

// WithSimulatedLatency overrides the unconfigured write delay.
func WithSimulatedLatency(d time.Duration) Option {
	return func(g *Gateway) {
		g.latency = d
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New creates a Gateway over the given fallback store.
func New(store storage.CampaignStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:       store,
		logger:      log.Default(),
		defaultFee:  DefaultFee,
		createFee:   CreateFee,
		maxGas:      DefaultMaxGas,
		listLimit:   DefaultListLimit,
		payoutBatch: DefaultPayoutBatch,
		latency:     DefaultSimulatedLatency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports whether a ledger read client is set.
func (g *Gateway) Configured() bool {
	return g.reader != nil
}

// warnf logs a read-path fallback. Read failures never propagate.
func (g *Gateway) warnf(format string, v ...interface{}) {
	if g.logger != nil {
		g.logger.Printf("[gateway] "+format, v...)
	}
}

// filterAndSort applies status/category equality filters and orders the
// result newest first. Every read path goes through it so callers see an
// identical shape regardless of source.
func filterAndSort(campaigns []domain.Campaign, f domain.CampaignFilters) []domain.Campaign {
	out := make([]domain.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// isLocalID reports whether id sits in the local allocation range.
// Ledger identifiers are u32; the fallback stores allocate above that
// range so the two spaces never collide, and an id from the local range
// must never be truncated into a ledger argument.
func isLocalID(id uint64) bool {
	return id > math.MaxUint32
}

// localCampaigns loads the fallback list, swallowing transport errors.
func (g *Gateway) localCampaigns(ctx context.Context) []domain.Campaign {
	local, err := g.store.List(ctx)
	if err != nil {
		g.warnf("local store list: %v", err)
		return nil
	}
	observability.UpdateLocalCampaigns(len(local))
	return local
}

// FetchCampaigns lists campaigns from the preferred source. When the
// ledger is configured and returns at least one record it is
// authoritative; an empty or failed ledger read serves the local list so
// locally created campaigns stay visible.
func (g *Gateway) FetchCampaigns(ctx context.Context, filters domain.CampaignFilters) ([]domain.Campaign, error) {
	local := g.localCampaigns(ctx)

	if !g.Configured() {
		observability.RecordRead(wire.FnListCampaigns, "local")
		return filterAndSort(local, filters), nil
	}

	query := filters
	if query.Limit == 0 {
		query.Limit = g.listLimit
	}

	start := g.now()
	payload, err := g.reader.ReadCall(ctx, wire.FnListCampaigns, wire.EncodeListCampaigns(query))
	if err == nil {
		observability.RecordReadLatency(wire.FnListCampaigns, g.now().Sub(start).Seconds())
		onChain, decodeErr := wire.DecodeCampaignList(args.NewReader(payload))
		if decodeErr == nil {
			observability.RecordRead(wire.FnListCampaigns, "ledger")
			if len(onChain) == 0 {
				// An empty configured ledger must not hide local
				// campaigns.
				return filterAndSort(local, filters), nil
			}
			return filterAndSort(onChain, filters), nil
		}
		err = decodeErr
	}

	g.warnf("list campaigns: falling back to local store: %v", err)
	observability.RecordFallback(wire.FnListCampaigns, fallbackReason(err))
	observability.RecordRead(wire.FnListCampaigns, "local")
	return filterAndSort(local, filters), nil
}

// FetchCampaignByID retrieves one campaign. An absent identifier yields
// a placeholder record with an empty title, never an error: callers
// treat the empty title as the not-found sentinel.
func (g *Gateway) FetchCampaignByID(ctx context.Context, id uint64) (*domain.Campaign, error) {
	if g.Configured() && !isLocalID(id) {
		payload, err := g.reader.ReadCall(ctx, wire.FnGetCampaign, wire.EncodeCampaignID(uint32(id)))
		if err == nil {
			c, decodeErr := wire.DecodeCampaign(args.NewReader(payload))
			if decodeErr == nil {
				observability.RecordRead(wire.FnGetCampaign, "ledger")
				return c, nil
			}
			err = decodeErr
		}
		g.warnf("get campaign %d: falling back to local store: %v", id, err)
		observability.RecordFallback(wire.FnGetCampaign, fallbackReason(err))
	}

	observability.RecordRead(wire.FnGetCampaign, "local")
	c, err := g.store.GetByID(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		g.warnf("local store get %d: %v", id, err)
	}
	return g.placeholderCampaign(id), nil
}

// placeholderCampaign is the not-found sentinel: a zero-value record
// with the requested identifier and an empty title.
func (g *Gateway) placeholderCampaign(id uint64) *domain.Campaign {
	now := g.now().UnixMilli()
	zero := 0.0
	return &domain.Campaign{
		ID:           id,
		Category:     domain.DefaultCategory,
		PricingModel: domain.PricingPerClick,
		CostPerClick: &zero,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FetchHosterProfile retrieves a hoster profile, aggregating one from
// local campaigns when the ledger cannot serve it.
func (g *Gateway) FetchHosterProfile(ctx context.Context, address string) (*domain.HosterProfile, error) {
	if g.Configured() {
		payload, err := g.reader.ReadCall(ctx, wire.FnGetHosterProfile, wire.EncodeAddress(address))
		if err == nil {
			p, decodeErr := wire.DecodeHoster(args.NewReader(payload))
			if decodeErr == nil {
				observability.RecordRead(wire.FnGetHosterProfile, "ledger")
				return p, nil
			}
			err = decodeErr
		}
		g.warnf("get hoster profile: falling back to local aggregate: %v", err)
		observability.RecordFallback(wire.FnGetHosterProfile, fallbackReason(err))
	}

	observability.RecordRead(wire.FnGetHosterProfile, "local")
	p, err := g.store.HosterAggregate(ctx, address)
	if err != nil {
		g.warnf("local hoster aggregate: %v", err)
		return storage.AggregateHoster(nil, address, g.now()), nil
	}
	return p, nil
}

// FetchDeveloperProfile retrieves a developer profile. The fallback is a
// zeroed profile carrying only the address.
func (g *Gateway) FetchDeveloperProfile(ctx context.Context, address string) (*domain.DeveloperProfile, error) {
	if g.Configured() {
		payload, err := g.reader.ReadCall(ctx, wire.FnGetDeveloperProfile, wire.EncodeAddress(address))
		if err == nil {
			p, decodeErr := wire.DecodeDeveloper(args.NewReader(payload))
			if decodeErr == nil {
				observability.RecordRead(wire.FnGetDeveloperProfile, "ledger")
				return p, nil
			}
			err = decodeErr
		}
		g.warnf("get developer profile: serving zeroed fallback: %v", err)
		observability.RecordFallback(wire.FnGetDeveloperProfile, fallbackReason(err))
	}

	observability.RecordRead(wire.FnGetDeveloperProfile, "local")
	now := g.now().UnixMilli()
	return &domain.DeveloperProfile{
		Address:    address,
		Categories: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// FetchPlatformStats retrieves platform-wide counters, zeroed when the
// ledger cannot serve them.
func (g *Gateway) FetchPlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	if g.Configured() {
		payload, err := g.reader.ReadCall(ctx, wire.FnGetPlatformStats, nil)
		if err == nil {
			s, decodeErr := wire.DecodeStats(args.NewReader(payload))
			if decodeErr == nil {
				observability.RecordRead(wire.FnGetPlatformStats, "ledger")
				return s, nil
			}
			err = decodeErr
		}
		g.warnf("get platform stats: serving zeroed fallback: %v", err)
		observability.RecordFallback(wire.FnGetPlatformStats, fallbackReason(err))
	}

	observability.RecordRead(wire.FnGetPlatformStats, "local")
	return &domain.PlatformStats{}, nil
}

// simulate resolves an unconfigured write after the configured latency.
func (g *Gateway) simulate(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.latency):
		return nil
	}
}

// submit runs one signed ledger call with the default economics.
func (g *Gateway) submit(ctx context.Context, function string, parameter []byte) (string, error) {
	return g.submitWith(ctx, massa.CallParams{
		Function:  function,
		Parameter: parameter,
		Fee:       g.defaultFee,
		MaxGas:    g.maxGas,
	})
}

func (g *Gateway) submitWith(ctx context.Context, params massa.CallParams) (string, error) {
	if g.caller == nil {
		return "", ErrUnauthenticated
	}
	opID, err := g.caller.Call(ctx, params)
	observability.RecordCall(params.Function, err)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", params.Function, err)
	}
	return opID, nil
}

// RegisterHoster registers the calling account as a hoster. Returns the
// operation ID, empty for the simulated path.
func (g *Gateway) RegisterHoster(ctx context.Context, in domain.RegisterHosterInput) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	return g.submit(ctx, wire.FnRegisterHoster, wire.EncodeRegisterHoster(in))
}

// RegisterDeveloper registers the calling account as a developer.
func (g *Gateway) RegisterDeveloper(ctx context.Context, in domain.RegisterDeveloperInput) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	return g.submit(ctx, wire.FnRegisterDeveloper, wire.EncodeRegisterDeveloper(in))
}

// CreateCampaign creates a campaign. Unconfigured, it writes the record
// through to the local store after the simulated submission so the
// campaign is visible immediately; the stored record is returned.
// Configured, the attached value is the larger of the requested budget
// and the minimum floor, and only the operation ID is returned.
func (g *Gateway) CreateCampaign(ctx context.Context, owner string, in domain.CreateCampaignInput) (*domain.Campaign, string, error) {
	if !g.Configured() {
		if err := g.simulate(ctx); err != nil {
			return nil, "", err
		}
		c, err := g.store.Create(ctx, owner, in)
		if err != nil {
			return nil, "", fmt.Errorf("create local campaign: %w", err)
		}
		return c, "", nil
	}

	coins := units.FloatToBaseUnits(in.Budget)
	if coins < MinCreateCoins {
		coins = MinCreateCoins
	}

	opID, err := g.submitWith(ctx, massa.CallParams{
		Function:  wire.FnCreateCampaign,
		Parameter: wire.EncodeCreateCampaign(in),
		Coins:     coins,
		Fee:       g.createFee,
		MaxGas:    g.maxGas,
	})
	if err != nil {
		return nil, "", err
	}
	return nil, opID, nil
}

// UpdateCampaignStatus moves a campaign through its lifecycle.
func (g *Gateway) UpdateCampaignStatus(ctx context.Context, id uint64, status domain.CampaignStatus) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	if isLocalID(id) {
		return "", ErrLocalID
	}
	return g.submit(ctx, wire.FnUpdateCampaignStatus, wire.EncodeUpdateCampaignStatus(uint32(id), status))
}

// UpdateCampaignDetails edits the editable campaign fields.
func (g *Gateway) UpdateCampaignDetails(ctx context.Context, id uint64, in domain.UpdateCampaignDetailsInput) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	if isLocalID(id) {
		return "", ErrLocalID
	}
	return g.submit(ctx, wire.FnUpdateCampaignDetails, wire.EncodeUpdateCampaignDetails(uint32(id), in))
}

// DeleteCampaign removes a campaign on the ledger. The local store has
// no delete; unconfigured deletes only simulate.
func (g *Gateway) DeleteCampaign(ctx context.Context, id uint64) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	if isLocalID(id) {
		return "", ErrLocalID
	}
	return g.submit(ctx, wire.FnDeleteCampaign, wire.EncodeCampaignID(uint32(id)))
}

// ClaimDeveloperEarnings pays out the caller's pending earnings.
func (g *Gateway) ClaimDeveloperEarnings(ctx context.Context) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	return g.submit(ctx, wire.FnClaimEarnings, nil)
}

// TriggerScheduledPayouts runs one payout batch. A zero batch size uses
// the configured default.
func (g *Gateway) TriggerScheduledPayouts(ctx context.Context, batchSize uint32) (string, error) {
	if !g.Configured() {
		return "", g.simulate(ctx)
	}
	if batchSize == 0 {
		batchSize = g.payoutBatch
	}
	return g.submit(ctx, wire.FnTriggerPayouts, wire.EncodeBatchSize(batchSize))
}

// RecordImpression records one impression. On the ledger it is
// fire-and-forget; without a configured signer, or for a locally
// allocated identifier, it increments the local record instead.
func (g *Gateway) RecordImpression(ctx context.Context, id uint64) error {
	observability.RecordImpression()

	if g.Configured() && g.caller != nil && !isLocalID(id) {
		if _, err := g.submit(ctx, wire.FnRecordImpression, wire.EncodeCampaignID(uint32(id))); err != nil {
			g.warnf("record impression %d: %v", id, err)
		}
		return nil
	}

	c, err := g.store.GetByID(ctx, id)
	if err != nil {
		return nil // nothing to increment
	}
	impressions := c.Impressions + 1
	_, err = g.store.Update(ctx, id, domain.CampaignPatch{Impressions: &impressions})
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		g.warnf("record local impression %d: %v", id, err)
	}
	return nil
}

// RecordClick records one click. The local path accrues the per-click
// rate into the spent amount, capped at the budget.
func (g *Gateway) RecordClick(ctx context.Context, id uint64) error {
	observability.RecordClick()

	if g.Configured() && g.caller != nil && !isLocalID(id) {
		if _, err := g.submit(ctx, wire.FnRecordClick, wire.EncodeCampaignID(uint32(id))); err != nil {
			g.warnf("record click %d: %v", id, err)
		}
		return nil
	}

	c, err := g.store.GetByID(ctx, id)
	if err != nil {
		return nil
	}

	clicks := c.Clicks + 1
	patch := domain.CampaignPatch{Clicks: &clicks}
	if c.PricingModel == domain.PricingPerClick && c.CostPerClick != nil {
		spent := c.Spent + *c.CostPerClick
		if spent > c.Budget {
			spent = c.Budget
		}
		patch.Spent = &spent
	}
	_, err = g.store.Update(ctx, id, patch)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		g.warnf("record local click %d: %v", id, err)
	}
	return nil
}

// CountCampaignsByOwner counts locally stored campaigns; an empty owner
// counts all.
func (g *Gateway) CountCampaignsByOwner(ctx context.Context, owner string) (int, error) {
	return g.store.CountByOwner(ctx, owner)
}

// fallbackReason buckets a read failure for metrics.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, args.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, massa.ErrExecutionFailed):
		return "execution_failed"
	default:
		return "remote_call_failure"
	}
}
