package memory

import (
	"context"
	"sync"
	"time"

	"massa-adnet/internal/domain"
	"massa-adnet/internal/storage"
)

// CampaignStore is an in-memory implementation of storage.CampaignStore.
// It is the zero-setup default backend and the reference for tests.
type CampaignStore struct {
	mu        sync.RWMutex
	campaigns []domain.Campaign // newest first
	publisher storage.ChangePublisher
	now       func() time.Time
}

// NewCampaignStore creates a new in-memory campaign store. The publisher
// may be nil when no listener cares about change notifications.
func NewCampaignStore(publisher storage.ChangePublisher) *CampaignStore {
	return &CampaignStore{
		publisher: publisher,
		now:       time.Now,
	}
}

// Compile-time interface check.
var _ storage.CampaignStore = (*CampaignStore)(nil)

// SetClock overrides the time source. Test use only.
func (s *CampaignStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CampaignStore) notify(ctx context.Context, campaignID uint64) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, storage.ChangeEvent{
		Timestamp:  s.now().UnixMilli(),
		CampaignID: campaignID,
	})
}

// List returns the full list, newest first.
func (s *CampaignStore) List(_ context.Context) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Campaign, len(s.campaigns))
	copy(out, s.campaigns)
	return out, nil
}

// GetByID retrieves a campaign by identifier.
func (s *CampaignStore) GetByID(_ context.Context, id uint64) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			c := s.campaigns[i]
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Create allocates an identifier, prepends the new record and notifies.
func (s *CampaignStore) Create(ctx context.Context, owner string, in domain.CreateCampaignInput) (*domain.Campaign, error) {
	s.mu.Lock()

	now := s.now()
	id := storage.NextCampaignID(s.campaigns, now)
	c := storage.NewLocalCampaign(id, owner, in, now)
	s.campaigns = append([]domain.Campaign{*c}, s.campaigns...)

	s.mu.Unlock()

	s.notify(ctx, c.ID)
	return c, nil
}

// Update shallow-merges the patch and notifies. Returns ErrNotFound
// without mutating anything when the identifier is absent.
func (s *CampaignStore) Update(ctx context.Context, id uint64, patch domain.CampaignPatch) (*domain.Campaign, error) {
	s.mu.Lock()

	idx := -1
	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return nil, storage.ErrNotFound
	}

	storage.ApplyPatch(&s.campaigns[idx], patch, s.now())
	c := s.campaigns[idx]

	s.mu.Unlock()

	s.notify(ctx, id)
	return &c, nil
}

// CountByOwner counts campaigns, all of them when owner is empty.
func (s *CampaignStore) CountByOwner(_ context.Context, owner string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if owner == "" {
		return len(s.campaigns), nil
	}
	count := 0
	for i := range s.campaigns {
		if s.campaigns[i].Owner == owner {
			count++
		}
	}
	return count, nil
}

// HosterAggregate computes a hoster profile from stored campaigns.
func (s *CampaignStore) HosterAggregate(_ context.Context, owner string) (*domain.HosterProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return storage.AggregateHoster(s.campaigns, owner, s.now()), nil
}
