// Package redis persists the campaign fallback store in Redis: the whole
// list as one JSON document under a single key, a millisecond timestamp
// under a second key as the cross-context change signal, and a pub/sub
// channel carrying the change events other contexts subscribe to.
//
// Every mutation reads the full document, merges and writes it back.
// There is no compare-and-swap: rapid interleaved writes from different
// contexts are last-writer-wins.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"massa-adnet/internal/domain"
	"massa-adnet/internal/storage"
)

// Default storage keys. The signal key doubles as the pub/sub channel name.
const (
	DefaultCampaignsKey = "adnet:local_campaigns"
	DefaultSignalKey    = "adnet:campaigns_updated"
)

// CampaignStore implements storage.CampaignStore on Redis.
type CampaignStore struct {
	client       *redis.Client
	campaignsKey string
	signalKey    string
	publisher    storage.ChangePublisher
	now          func() time.Time
}

// Option configures CampaignStore.
type Option func(*CampaignStore)

// WithKeys overrides the document and signal keys.
func WithKeys(campaignsKey, signalKey string) Option {
	return func(s *CampaignStore) {
		s.campaignsKey = campaignsKey
		s.signalKey = signalKey
	}
}

// WithPublisher attaches the in-process hub that same-context listeners
// observe; the Redis signal only reaches other contexts.
func WithPublisher(p storage.ChangePublisher) Option {
	return func(s *CampaignStore) {
		s.publisher = p
	}
}

// WithClock overrides the time source. Test use only.
func WithClock(now func() time.Time) Option {
	return func(s *CampaignStore) {
		s.now = now
	}
}

// NewCampaignStore creates a Redis-backed campaign store.
func NewCampaignStore(client *redis.Client, opts ...Option) *CampaignStore {
	s := &CampaignStore{
		client:       client,
		campaignsKey: DefaultCampaignsKey,
		signalKey:    DefaultSignalKey,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ storage.CampaignStore = (*CampaignStore)(nil)

// load reads the full document. Absent or corrupted documents yield an
// empty list; only transport errors propagate.
func (s *CampaignStore) load(ctx context.Context) ([]domain.Campaign, error) {
	raw, err := s.client.Get(ctx, s.campaignsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read campaigns document: %w", err)
	}

	var doc []campaignJSON
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		// Corrupted document: swallow and start over.
		return nil, nil
	}

	campaigns := make([]domain.Campaign, 0, len(doc))
	for _, j := range doc {
		campaigns = append(campaigns, fromJSON(j))
	}
	return campaigns, nil
}

// save writes the full document back.
func (s *CampaignStore) save(ctx context.Context, campaigns []domain.Campaign) error {
	doc := make([]campaignJSON, 0, len(campaigns))
	for i := range campaigns {
		doc = append(doc, toJSON(&campaigns[i]))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal campaigns document: %w", err)
	}
	if err := s.client.Set(ctx, s.campaignsKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("write campaigns document: %w", err)
	}
	return nil
}

// broadcast writes the cross-context signal key, publishes on the channel
// and synchronously emits the in-process event. The storage-level signal is
// not observable by the context that made the change, hence the double path.
func (s *CampaignStore) broadcast(ctx context.Context, campaignID uint64) {
	ev := storage.ChangeEvent{
		Timestamp:  s.now().UnixMilli(),
		CampaignID: campaignID,
	}

	// Best effort: a lost signal only delays a refresh.
	s.client.Set(ctx, s.signalKey, strconv.FormatInt(ev.Timestamp, 10), 0)
	if payload, err := json.Marshal(ev); err == nil {
		s.client.Publish(ctx, s.signalKey, payload)
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, ev)
	}
}

// List returns the persisted list, newest first.
func (s *CampaignStore) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.load(ctx)
}

// GetByID scans the document for a matching identifier.
func (s *CampaignStore) GetByID(ctx context.Context, id uint64) (*domain.Campaign, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		if campaigns[i].ID == id {
			c := campaigns[i]
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Create allocates an identifier, unshifts the record and persists.
func (s *CampaignStore) Create(ctx context.Context, owner string, in domain.CreateCampaignInput) (*domain.Campaign, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := storage.NewLocalCampaign(storage.NextCampaignID(campaigns, now), owner, in, now)
	campaigns = append([]domain.Campaign{*c}, campaigns...)

	if err := s.save(ctx, campaigns); err != nil {
		return nil, err
	}
	s.broadcast(ctx, c.ID)
	return c, nil
}

// Update shallow-merges the patch over the matching record and persists
// the whole list. Returns ErrNotFound without writing when absent.
func (s *CampaignStore) Update(ctx context.Context, id uint64, patch domain.CampaignPatch) (*domain.Campaign, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range campaigns {
		if campaigns[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, storage.ErrNotFound
	}

	storage.ApplyPatch(&campaigns[idx], patch, s.now())
	if err := s.save(ctx, campaigns); err != nil {
		return nil, err
	}

	c := campaigns[idx]
	s.broadcast(ctx, id)
	return &c, nil
}

// CountByOwner counts campaigns, all of them when owner is empty.
func (s *CampaignStore) CountByOwner(ctx context.Context, owner string) (int, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if owner == "" {
		return len(campaigns), nil
	}
	count := 0
	for i := range campaigns {
		if campaigns[i].Owner == owner {
			count++
		}
	}
	return count, nil
}

// HosterAggregate computes a hoster profile from the stored campaigns.
func (s *CampaignStore) HosterAggregate(ctx context.Context, owner string) (*domain.HosterProfile, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return storage.AggregateHoster(campaigns, owner, s.now()), nil
}
