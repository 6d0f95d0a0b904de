// Package wire fixes the per-entity field orders of the ledger's binary
// protocol and converts between raw argument buffers and domain entities.
//
// Field order is part of the protocol: each decoder consumes its buffer in
// exactly the declaration order listed on the decode function. Adding a
// field means appending it to the order, never reordering.
package wire

import (
	"massa-adnet/internal/args"
	"massa-adnet/internal/domain"
	"massa-adnet/internal/units"
)

// DisplayPrecision is the fractional precision used when converting
// monetary base units to display decimals.
const DisplayPrecision = 6

// DecodeCampaign consumes one campaign in wire order:
// id(u32), owner, title, description, category, targetUrl, creativeRef,
// pricingModel, rate(u64), budget(u64), spent(u64), status,
// impressions(u64), clicks(u64), createdAt(u64), updatedAt(u64).
func DecodeCampaign(r *args.Reader) (*domain.Campaign, error) {
	id, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	owner, err := r.NextString()
	if err != nil {
		return nil, err
	}
	title, err := r.NextString()
	if err != nil {
		return nil, err
	}
	description, err := r.NextString()
	if err != nil {
		return nil, err
	}
	category, err := r.NextString()
	if err != nil {
		return nil, err
	}
	targetURL, err := r.NextString()
	if err != nil {
		return nil, err
	}
	creativeRef, err := r.NextString()
	if err != nil {
		return nil, err
	}
	pricingModel, err := r.NextString()
	if err != nil {
		return nil, err
	}
	rateRaw, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	budgetRaw, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	spentRaw, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	status, err := r.NextString()
	if err != nil {
		return nil, err
	}
	impressions, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	clicks, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	createdAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	updatedAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}

	c := &domain.Campaign{
		ID:           uint64(id),
		Owner:        owner,
		Title:        title,
		Description:  description,
		Category:     domain.Category(category),
		TargetURL:    targetURL,
		CreativeRef:  creativeRef,
		PricingModel: domain.PricingModel(pricingModel),
		Budget:       units.Float(budgetRaw, DisplayPrecision),
		Spent:        units.Float(spentRaw, DisplayPrecision),
		Status:       domain.CampaignStatus(status),
		Impressions:  impressions,
		Clicks:       clicks,
		CreatedAt:    int64(createdAt),
		UpdatedAt:    int64(updatedAt),
	}

	if img, ok := domain.DisplayableImage(creativeRef); ok {
		c.ImageURL = img
	}

	rate := units.Float(rateRaw, DisplayPrecision)
	switch c.PricingModel {
	case domain.PricingPerClick:
		c.CostPerClick = &rate
	case domain.PricingPerMille:
		c.CostPerMille = &rate
	}

	return c, nil
}

// minEncodedCampaign is the smallest possible encoded campaign: every
// string empty, so each of the 16 fields is just its fixed-size part.
const minEncodedCampaign = 4 + 8*4 + 7*8

// DecodeCampaignList consumes a u32 count followed by count campaigns.
// The count prefix is untrusted input; the pre-allocation is capped by
// what the remaining bytes could actually encode, so an oversized count
// fails with ErrMalformedResponse instead of exhausting memory.
func DecodeCampaignList(r *args.Reader) ([]domain.Campaign, error) {
	count, err := r.NextU32()
	if err != nil {
		return nil, err
	}

	capHint := int(count)
	if max := r.Remaining() / minEncodedCampaign; capHint > max {
		capHint = max
	}

	campaigns := make([]domain.Campaign, 0, capHint)
	for i := uint32(0); i < count; i++ {
		c, err := DecodeCampaign(r)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, nil
}

// DecodeHoster consumes one hoster profile in wire order:
// address, name, businessName, categories, totalBudget(u64),
// totalSpent(u64), activeCampaigns(u32), createdAt(u64), updatedAt(u64).
func DecodeHoster(r *args.Reader) (*domain.HosterProfile, error) {
	address, err := r.NextString()
	if err != nil {
		return nil, err
	}
	name, err := r.NextString()
	if err != nil {
		return nil, err
	}
	businessName, err := r.NextString()
	if err != nil {
		return nil, err
	}
	categories, err := r.NextString()
	if err != nil {
		return nil, err
	}
	totalBudget, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	totalSpent, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	activeCampaigns, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	createdAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	updatedAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}

	return &domain.HosterProfile{
		Address:         address,
		Name:            name,
		BusinessName:    businessName,
		Categories:      domain.SplitTags(categories),
		TotalBudget:     units.Float(totalBudget, DisplayPrecision),
		TotalSpent:      units.Float(totalSpent, DisplayPrecision),
		ActiveCampaigns: activeCampaigns,
		CreatedAt:       int64(createdAt),
		UpdatedAt:       int64(updatedAt),
	}, nil
}

// DecodeDeveloper consumes one developer profile in wire order:
// address, name, website, categories, reputation(i32), impressions(u64),
// clicks(u64), pendingPayout(u64), lifetimeEarnings(u64), lastPayoutAt(u64),
// fraudCount(u32), createdAt(u64), updatedAt(u64).
func DecodeDeveloper(r *args.Reader) (*domain.DeveloperProfile, error) {
	address, err := r.NextString()
	if err != nil {
		return nil, err
	}
	name, err := r.NextString()
	if err != nil {
		return nil, err
	}
	website, err := r.NextString()
	if err != nil {
		return nil, err
	}
	categories, err := r.NextString()
	if err != nil {
		return nil, err
	}
	reputation, err := r.NextI32()
	if err != nil {
		return nil, err
	}
	impressions, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	clicks, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	pendingPayout, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	lifetimeEarnings, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	lastPayoutAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	fraudCount, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	createdAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	updatedAt, err := r.NextU64()
	if err != nil {
		return nil, err
	}

	return &domain.DeveloperProfile{
		Address:          address,
		Name:             name,
		Website:          website,
		Categories:       domain.SplitTags(categories),
		Reputation:       reputation,
		Impressions:      impressions,
		Clicks:           clicks,
		PendingPayout:    units.Float(pendingPayout, DisplayPrecision),
		LifetimeEarnings: units.Float(lifetimeEarnings, DisplayPrecision),
		LastPayoutAt:     int64(lastPayoutAt),
		FraudCount:       fraudCount,
		CreatedAt:        int64(createdAt),
		UpdatedAt:        int64(updatedAt),
	}, nil
}

// DecodeStats consumes platform stats in wire order:
// hosters(u32), developers(u32), campaigns(u32), activeCampaigns(u32),
// lockedBudget(u64), spent(u64), impressions(u64), clicks(u64).
func DecodeStats(r *args.Reader) (*domain.PlatformStats, error) {
	hosters, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	developers, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	campaigns, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	active, err := r.NextU32()
	if err != nil {
		return nil, err
	}
	lockedBudget, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	spent, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	impressions, err := r.NextU64()
	if err != nil {
		return nil, err
	}
	clicks, err := r.NextU64()
	if err != nil {
		return nil, err
	}

	return &domain.PlatformStats{
		Hosters:         hosters,
		Developers:      developers,
		Campaigns:       campaigns,
		ActiveCampaigns: active,
		LockedBudget:    units.Float(lockedBudget, DisplayPrecision),
		Spent:           units.Float(spent, DisplayPrecision),
		Impressions:     impressions,
		Clicks:          clicks,
	}, nil
}
