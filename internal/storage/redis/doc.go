package redis

import (
	"massa-adnet/internal/domain"
)

// campaignJSON is the persisted shape of one campaign inside the single
// JSON document. Field names follow the marketplace's client schema so a
// document written by any context stays readable by every other.
type campaignJSON struct {
	ID           uint64   `json:"id"`
	Owner        string   `json:"owner"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	TargetURL    string   `json:"targetUrl"`
	CreativeRef  string   `json:"creativeUri"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	PricingModel string   `json:"pricingModel"`
	CostPerClick *float64 `json:"costPerClick"`
	CostPerMille *float64 `json:"costPerImpression"`
	Budget       float64  `json:"budget"`
	Spent        float64  `json:"spent"`
	Status       string   `json:"status"`
	Impressions  uint64   `json:"impressions"`
	Clicks       uint64   `json:"clicks"`
	CreatedAt    int64    `json:"createdAt"`
	UpdatedAt    int64    `json:"updatedAt"`
}

func toJSON(c *domain.Campaign) campaignJSON {
	return campaignJSON{
		ID:           c.ID,
		Owner:        c.Owner,
		Title:        c.Title,
		Description:  c.Description,
		Category:     string(c.Category),
		TargetURL:    c.TargetURL,
		CreativeRef:  c.CreativeRef,
		ImageURL:     c.ImageURL,
		PricingModel: string(c.PricingModel),
		CostPerClick: c.CostPerClick,
		CostPerMille: c.CostPerMille,
		Budget:       c.Budget,
		Spent:        c.Spent,
		Status:       string(c.Status),
		Impressions:  c.Impressions,
		Clicks:       c.Clicks,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func fromJSON(j campaignJSON) domain.Campaign {
	return domain.Campaign{
		ID:           j.ID,
		Owner:        j.Owner,
		Title:        j.Title,
		Description:  j.Description,
		Category:     domain.Category(j.Category),
		TargetURL:    j.TargetURL,
		CreativeRef:  j.CreativeRef,
		ImageURL:     j.ImageURL,
		PricingModel: domain.PricingModel(j.PricingModel),
		CostPerClick: j.CostPerClick,
		CostPerMille: j.CostPerMille,
		Budget:       j.Budget,
		Spent:        j.Spent,
		Status:       domain.CampaignStatus(j.Status),
		Impressions:  j.Impressions,
		Clicks:       j.Clicks,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
