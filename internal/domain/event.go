package domain

// AdEventType classifies a recorded delivery event.
type AdEventType string

const (
	AdEventImpression AdEventType = "impression"
	AdEventClick      AdEventType = "click"
)

// AdEvent is one impression or click recorded for local analytics.
type AdEvent struct {
	CampaignID uint64
	Type       AdEventType
	Viewer     string // wallet address of the viewer, may be empty
	OccurredAt int64  // unix milliseconds
}

// AdEventCounts aggregates recorded events for one campaign.
type AdEventCounts struct {
	CampaignID  uint64
	Impressions uint64
	Clicks      uint64
}
