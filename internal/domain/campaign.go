package domain

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	StatusActive  CampaignStatus = "active"
	StatusPaused  CampaignStatus = "paused"
	StatusStopped CampaignStatus = "stopped"
)

// String returns the string representation of CampaignStatus.
func (s CampaignStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s CampaignStatus) IsValid() bool {
	return s == StatusActive || s == StatusPaused || s == StatusStopped
}

// PricingModel denominates a campaign's rate: per click or per thousand
// impressions. Values match the wire encoding used by the ledger.
type PricingModel string

const (
	PricingPerClick PricingModel = "cpc"
	PricingPerMille PricingModel = "cpm"
)

// String returns the string representation of PricingModel.
func (p PricingModel) String() string {
	return string(p)
}

// IsValid checks if the pricing model is a valid value.
func (p PricingModel) IsValid() bool {
	return p == PricingPerClick || p == PricingPerMille
}

// Category classifies a campaign. The wire carries free-form strings; the
// constants below are the set the marketplace UI offers.
type Category string

const (
	CategoryTech          Category = "Tech"
	CategoryFinance       Category = "Finance"
	CategoryGaming        Category = "Gaming"
	CategoryFashion       Category = "Fashion"
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// DefaultCategory is used for placeholder campaigns.
const DefaultCategory = CategoryTech

// Campaign represents an advertising unit, owned by the hoster that
// created it.
//
// Ledger-assigned identifiers live in the u32 range; the fallback store
// allocates identifiers above that range (timestamp-derived), so the two
// identifier spaces stay disjoint when both sources are merged.
type Campaign struct {
	ID          uint64
	Owner       string
	Title       string
	Description string
	Category    Category
	TargetURL   string

	// CreativeRef is the raw creative reference: a remote URL, a
	// content-addressed reference, or an embedded data blob.
	CreativeRef string
	// ImageURL is the displayable form of CreativeRef, empty when the
	// reference does not classify as a displayable image.
	ImageURL string

	PricingModel PricingModel
	// Exactly one of the two rates is set, according to PricingModel.
	CostPerClick *float64
	CostPerMille *float64

	// Budget and Spent are display decimals derived from base units.
	// 0 <= Spent <= Budget is an application-level invariant, not
	// enforced by storage.
	Budget float64
	Spent  float64

	Status      CampaignStatus
	Impressions uint64
	Clicks      uint64
	CreatedAt   int64 // Unix timestamp in milliseconds
	UpdatedAt   int64 // Unix timestamp in milliseconds
}

// Rate returns the active rate value for the campaign's pricing model.
func (c *Campaign) Rate() float64 {
	switch c.PricingModel {
	case PricingPerClick:
		if c.CostPerClick != nil {
			return *c.CostPerClick
		}
	case PricingPerMille:
		if c.CostPerMille != nil {
			return *c.CostPerMille
		}
	}
	return 0
}

// CampaignFilters narrows list queries. Zero values mean no filtering.
type CampaignFilters struct {
	Offset   uint32
	Limit    uint32
	Category Category
	Status   CampaignStatus
}

// CreateCampaignInput carries the fields needed to create a campaign.
// Rate and Budget are display decimals; conversion to base units happens
// at the call boundary.
type CreateCampaignInput struct {
	Title        string
	Description  string
	Category     Category
	TargetURL    string
	CreativeRef  string
	PricingModel PricingModel
	Rate         float64
	Budget       float64
}

// UpdateCampaignDetailsInput carries the editable campaign fields.
type UpdateCampaignDetailsInput struct {
	Title        string
	Description  string
	Category     Category
	TargetURL    string
	CreativeRef  string
	PricingModel PricingModel
	Rate         float64
}

// CampaignPatch is a shallow-merge patch for the fallback store. Nil fields
// are left untouched. UpdatedAt is always force-stamped by the store
// regardless of the patch contents.
type CampaignPatch struct {
	Title        *string
	Description  *string
	Category     *Category
	TargetURL    *string
	CreativeRef  *string
	PricingModel *PricingModel
	CostPerClick *float64
	CostPerMille *float64
	Budget       *float64
	Spent        *float64
	Status       *CampaignStatus
	Impressions  *uint64
	Clicks       *uint64
}
