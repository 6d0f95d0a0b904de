package clickhouse

import (
	"context"
	"fmt"
	"time"

	"massa-adnet/internal/domain"
	"massa-adnet/internal/storage"
)

// AdEventStore implements storage.AdEventStore using ClickHouse.
type AdEventStore struct {
	conn *Conn
}

// NewAdEventStore creates a new AdEventStore.
func NewAdEventStore(conn *Conn) *AdEventStore {
	return &AdEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AdEventStore = (*AdEventStore)(nil)

// Record appends a single event.
func (s *AdEventStore) Record(ctx context.Context, event domain.AdEvent) error {
	return s.RecordBatch(ctx, []domain.AdEvent{event})
}

// RecordBatch appends multiple events in one round trip.
func (s *AdEventStore) RecordBatch(ctx context.Context, events []domain.AdEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ad_events (campaign_id, event_type, viewer, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.CampaignID, string(e.Type), e.Viewer,
			time.UnixMilli(e.OccurredAt).UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// Counts returns impression and click totals for one campaign. A campaign
// with no recorded events yields zero counts, not an error.
func (s *AdEventStore) Counts(ctx context.Context, campaignID uint64) (*domain.AdEventCounts, error) {
	query := `
		SELECT
			countIf(event_type = 'impression') AS impressions,
			countIf(event_type = 'click') AS clicks
		FROM ad_events
		WHERE campaign_id = ?
	`

	row := s.conn.QueryRow(ctx, query, campaignID)

	counts := &domain.AdEventCounts{CampaignID: campaignID}
	if err := row.Scan(&counts.Impressions, &counts.Clicks); err != nil {
		return nil, fmt.Errorf("scan counts: %w", err)
	}

	return counts, nil
}
