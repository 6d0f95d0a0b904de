package storage

import (
	"math/rand"
	"time"

	"massa-adnet/internal/domain"
)

// idOffsetRange bounds the random offset mixed into timestamp-derived
// identifiers to reduce collisions when multiple contexts create campaigns
// concurrently without coordination.
const idOffsetRange = 1000

// NextCampaignID allocates a local campaign identifier: the maximum
// existing identifier plus one, or, for an empty list, a timestamp-derived
// identifier with a random offset. Timestamp-derived identifiers sit far
// above the ledger's u32 range, so local and ledger identifiers can never
// be conflated in a merged view.
func NextCampaignID(existing []domain.Campaign, now time.Time) uint64 {
	if len(existing) > 0 {
		max := existing[0].ID
		for _, c := range existing[1:] {
			if c.ID > max {
				max = c.ID
			}
		}
		return max + 1
	}
	return uint64(now.UnixMilli()) + uint64(rand.Intn(idOffsetRange))
}

// NewLocalCampaign materializes a fallback-store record from create input.
// Status is unconditionally active so local campaigns are immediately
// visible; an empty owner gets a demo placeholder.
func NewLocalCampaign(id uint64, owner string, in domain.CreateCampaignInput, now time.Time) *domain.Campaign {
	if owner == "" {
		owner = "demo_hoster"
	}

	nowMs := now.UnixMilli()
	c := &domain.Campaign{
		ID:           id,
		Owner:        owner,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		TargetURL:    in.TargetURL,
		CreativeRef:  in.CreativeRef,
		PricingModel: in.PricingModel,
		Budget:       in.Budget,
		Spent:        0,
		Status:       domain.StatusActive,
		CreatedAt:    nowMs,
		UpdatedAt:    nowMs,
	}

	if img, ok := domain.DisplayableImage(in.CreativeRef); ok {
		c.ImageURL = img
	}

	rate := in.Rate
	switch in.PricingModel {
	case domain.PricingPerClick:
		c.CostPerClick = &rate
	case domain.PricingPerMille:
		c.CostPerMille = &rate
	}

	return c
}

// ApplyPatch shallow-merges a patch over a campaign and force-stamps
// UpdatedAt, regardless of the patch contents.
func ApplyPatch(c *domain.Campaign, patch domain.CampaignPatch, now time.Time) {
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.TargetURL != nil {
		c.TargetURL = *patch.TargetURL
	}
	if patch.CreativeRef != nil {
		c.CreativeRef = *patch.CreativeRef
		if img, ok := domain.DisplayableImage(*patch.CreativeRef); ok {
			c.ImageURL = img
		} else {
			c.ImageURL = ""
		}
	}
	if patch.PricingModel != nil {
		c.PricingModel = *patch.PricingModel
	}
	if patch.CostPerClick != nil {
		v := *patch.CostPerClick
		c.CostPerClick = &v
	}
	if patch.CostPerMille != nil {
		v := *patch.CostPerMille
		c.CostPerMille = &v
	}
	if patch.Budget != nil {
		c.Budget = *patch.Budget
	}
	if patch.Spent != nil {
		c.Spent = *patch.Spent
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Impressions != nil {
		c.Impressions = *patch.Impressions
	}
	if patch.Clicks != nil {
		c.Clicks = *patch.Clicks
	}
	c.UpdatedAt = now.UnixMilli()
}

// AggregateHoster computes a hoster profile from stored campaigns. An
// empty owner aggregates over every record. Local campaigns count as
// active since the store only creates active records.
func AggregateHoster(campaigns []domain.Campaign, owner string, now time.Time) *domain.HosterProfile {
	var totalBudget, totalSpent float64
	var count uint32
	for _, c := range campaigns {
		if owner != "" && c.Owner != owner {
			continue
		}
		totalBudget += c.Budget
		totalSpent += c.Spent
		count++
	}

	nowMs := now.UnixMilli()
	return &domain.HosterProfile{
		Address:         owner,
		Categories:      []string{},
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		ActiveCampaigns: count,
		CreatedAt:       nowMs,
		UpdatedAt:       nowMs,
	}
}
