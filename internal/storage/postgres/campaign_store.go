// Package postgres implements the campaign fallback store on PostgreSQL,
// for embedders that want the local store durable and shared across
// processes rather than scoped to one browsing context.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"massa-adnet/internal/domain"
	"massa-adnet/internal/storage"
)

// CampaignStore implements storage.CampaignStore using PostgreSQL.
type CampaignStore struct {
	pool      *Pool
	publisher storage.ChangePublisher
	now       func() time.Time
}

// NewCampaignStore creates a new CampaignStore. The publisher may be nil.
func NewCampaignStore(pool *Pool, publisher storage.ChangePublisher) *CampaignStore {
	return &CampaignStore{
		pool:      pool,
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

const campaignColumns = `
	id, owner, title, description, category, target_url, creative_ref,
	image_url, pricing_model, cost_per_click, cost_per_mille, budget,
	spent, status, impressions, clicks, created_at, updated_at
`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var id, impressions, clicks int64
	var category, pricingModel, status string

	err := row.Scan(
		&id, &c.Owner, &c.Title, &c.Description, &category, &c.TargetURL,
		&c.CreativeRef, &c.ImageURL, &pricingModel, &c.CostPerClick,
		&c.CostPerMille, &c.Budget, &c.Spent, &status, &impressions,
		&clicks, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID = uint64(id)
	c.Category = domain.Category(category)
	c.PricingModel = domain.PricingModel(pricingModel)
	c.Status = domain.CampaignStatus(status)
	c.Impressions = uint64(impressions)
	c.Clicks = uint64(clicks)
	return &c, nil
}

func (s *CampaignStore) insert(ctx context.Context, c *domain.Campaign) error {
	query := `
		INSERT INTO local_campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.pool.Exec(ctx, query,
		int64(c.ID), c.Owner, c.Title, c.Description, string(c.Category),
		c.TargetURL, c.CreativeRef, c.ImageURL, string(c.PricingModel),
		c.CostPerClick, c.CostPerMille, c.Budget, c.Spent, string(c.Status),
		int64(c.Impressions), int64(c.Clicks), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// List returns every campaign, newest first.
func (s *CampaignStore) List(ctx context.Context) ([]domain.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM local_campaigns
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetByID retrieves a campaign by identifier.
func (s *CampaignStore) GetByID(ctx context.Context, id uint64) (*domain.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM local_campaigns
		WHERE id = $1
	`
	c, err := scanCampaign(s.pool.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get campaign by id: %w", err)
	}
	return c, nil
}

// Create allocates an identifier and inserts the new record.
func (s *CampaignStore) Create(ctx context.Context, owner string, in domain.CreateCampaignInput) (*domain.Campaign, error) {
	now := s.now()

	var maxID *int64
	if err := s.pool.QueryRow(ctx, `SELECT MAX(id) FROM local_campaigns`).Scan(&maxID); err != nil {
		return nil, fmt.Errorf("allocate campaign id: %w", err)
	}

	var id uint64
	if maxID != nil {
		id = uint64(*maxID) + 1
	} else {
		id = storage.NextCampaignID(nil, now)
	}

	c := storage.NewLocalCampaign(id, owner, in, now)
	if err := s.insert(ctx, c); err != nil {
		return nil, err
	}

	s.notify(ctx, c.ID)
	return c, nil
}

// Update loads the record, applies the patch and writes it back. Returns
// ErrNotFound when the identifier is absent.
func (s *CampaignStore) Update(ctx context.Context, id uint64, patch domain.CampaignPatch) (*domain.Campaign, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	storage.ApplyPatch(c, patch, s.now())

	query := `
		UPDATE local_campaigns SET
			title = $2, description = $3, category = $4, target_url = $5,
			creative_ref = $6, image_url = $7, pricing_model = $8,
			cost_per_click = $9, cost_per_mille = $10, budget = $11,
			spent = $12, status = $13, impressions = $14, clicks = $15,
			updated_at = $16
		WHERE id = $1
	`
	_, err = s.pool.Exec(ctx, query,
		int64(c.ID), c.Title, c.Description, string(c.Category), c.TargetURL,
		c.CreativeRef, c.ImageURL, string(c.PricingModel), c.CostPerClick,
		c.CostPerMille, c.Budget, c.Spent, string(c.Status),
		int64(c.Impressions), int64(c.Clicks), c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	s.notify(ctx, id)
	return c, nil
}

// CountByOwner counts campaigns, all of them when owner is empty.
func (s *CampaignStore) CountByOwner(ctx context.Context, owner string) (int, error) {
	var count int
	var err error
	if owner == "" {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM local_campaigns`).Scan(&count)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM local_campaigns WHERE owner = $1`, owner).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count campaigns: %w", err)
	}
	return count, nil
}

// HosterAggregate computes a hoster profile from stored campaigns.
func (s *CampaignStore) HosterAggregate(ctx context.Context, owner string) (*domain.HosterProfile, error) {
	query := `
		SELECT COALESCE(SUM(budget), 0), COALESCE(SUM(spent), 0), COUNT(*)
		FROM local_campaigns
	`
	args := []any{}
	if owner != "" {
		query += ` WHERE owner = $1`
		args = append(args, owner)
	}

	var totalBudget, totalSpent float64
	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&totalBudget, &totalSpent, &count); err != nil {
		return nil, fmt.Errorf("aggregate hoster: %w", err)
	}

	nowMs := s.now().UnixMilli()
	return &domain.HosterProfile{
		Address:         owner,
		Categories:      []string{},
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		ActiveCampaigns: uint32(count),
		CreatedAt:       nowMs,
		UpdatedAt:       nowMs,
	}, nil
}
