package domain

// HosterProfile is the aggregate view of an advertiser, keyed by address.
// When the ledger is unavailable it is computed from locally stored
// campaigns rather than read from storage.
type HosterProfile struct {
	Address         string
	Name            string
	BusinessName    string
	Categories      []string
	TotalBudget     float64
	TotalSpent      float64
	ActiveCampaigns uint32
	CreatedAt       int64
	UpdatedAt       int64
}

// DeveloperProfile is the aggregate view of a publisher/integrator address.
type DeveloperProfile struct {
	Address          string
	Name             string
	Website          string
	Categories       []string
	Reputation       int32
	Impressions      uint64
	Clicks           uint64
	PendingPayout    float64
	LifetimeEarnings float64
	LastPayoutAt     int64
	FraudCount       uint32
	CreatedAt        int64
	UpdatedAt        int64
}

// PlatformStats is a read-only snapshot of platform-wide counters.
type PlatformStats struct {
	Hosters         uint32
	Developers      uint32
	Campaigns       uint32
	ActiveCampaigns uint32
	LockedBudget    float64
	Spent           float64
	Impressions     uint64
	Clicks          uint64
}

// RegisterHosterInput carries the fields for hoster registration.
type RegisterHosterInput struct {
	Name         string
	BusinessName string
	Categories   []string
}

// RegisterDeveloperInput carries the fields for developer registration.
type RegisterDeveloperInput struct {
	Name       string
	Website    string
	Categories []string
}
