package storage

import (
	"context"

	"massa-adnet/internal/domain"
)

// CampaignStore is the local fallback persistence for campaign records.
// The list is kept newest-first; identifiers are allocated locally and are
// disjoint from ledger-assigned identifiers (see NextCampaignID).
//
// Backends persist the whole list per mutation. Rapid interleaved writes
// from different contexts are a last-writer-wins hazard; the single-threaded
// caller model makes same-context writes safe without compare-and-swap.
type CampaignStore interface {
	// List returns the full persisted list, newest first. An absent or
	// corrupted document yields an empty list, never an error.
	List(ctx context.Context) ([]domain.Campaign, error)

	// GetByID retrieves a campaign by identifier. Returns ErrNotFound
	// if not present.
	GetByID(ctx context.Context, id uint64) (*domain.Campaign, error)

	// Create allocates an identifier, initializes status to active,
	// prepends the record and persists. A change notification is
	// published after the write.
	Create(ctx context.Context, owner string, in domain.CreateCampaignInput) (*domain.Campaign, error)

	// Update shallow-merges the patch over the record with the given
	// identifier, force-stamps UpdatedAt, persists and publishes a
	// change notification. Returns ErrNotFound without persisting when
	// the identifier is absent.
	Update(ctx context.Context, id uint64, patch domain.CampaignPatch) (*domain.Campaign, error)

	// CountByOwner counts campaigns, all of them when owner is empty.
	CountByOwner(ctx context.Context, owner string) (int, error)

	// HosterAggregate computes a hoster profile purely from stored
	// campaigns: summed budgets and spend, stored-campaign count as the
	// active count.
	HosterAggregate(ctx context.Context, owner string) (*domain.HosterProfile, error)
}

// AdEventStore records delivery events for local analytics. The log is
// append-only; counts are derived, never stored.
type AdEventStore interface {
	// Record appends a single event.
	Record(ctx context.Context, event domain.AdEvent) error

	// RecordBatch appends multiple events in one round trip.
	RecordBatch(ctx context.Context, events []domain.AdEvent) error

	// Counts returns impression and click totals for one campaign.
	Counts(ctx context.Context, campaignID uint64) (*domain.AdEventCounts, error)
}
