package wire

import (
	"massa-adnet/internal/args"
	"massa-adnet/internal/domain"
	"massa-adnet/internal/units"
)

// Ledger function names. Argument order below matches the contract's
// expected encoding order.
const (
	FnListCampaigns         = "listCampaigns"
	FnGetCampaign           = "getCampaign"
	FnGetHosterProfile      = "getHosterProfile"
	FnGetDeveloperProfile   = "getDeveloperProfile"
	FnGetPlatformStats      = "getPlatformStats"
	FnRegisterHoster        = "registerHoster"
	FnRegisterDeveloper     = "registerDeveloper"
	FnCreateCampaign        = "createCampaign"
	FnUpdateCampaignStatus  = "updateCampaignStatus"
	FnUpdateCampaignDetails = "updateCampaignDetails"
	FnDeleteCampaign        = "deleteCampaign"
	FnClaimEarnings         = "claimDeveloperEarnings"
	FnTriggerPayouts        = "triggerScheduledPayouts"
	FnRecordImpression      = "recordImpression"
	FnRecordClick           = "recordClick"
)

// EncodeListCampaigns encodes offset(u32), limit(u32), category, status.
func EncodeListCampaigns(f domain.CampaignFilters) []byte {
	return args.New().
		AddU32(f.Offset).
		AddU32(f.Limit).
		AddString(string(f.Category)).
		AddString(string(f.Status)).
		Bytes()
}

// EncodeCampaignID encodes a single id(u32) argument, shared by
// getCampaign, deleteCampaign, recordImpression and recordClick.
func EncodeCampaignID(id uint32) []byte {
	return args.New().AddU32(id).Bytes()
}

// EncodeAddress encodes an optional address argument: an empty address
// yields an empty buffer and the ledger resolves the caller.
func EncodeAddress(address string) []byte {
	if address == "" {
		return args.New().Bytes()
	}
	return args.New().AddString(address).Bytes()
}

// EncodeRegisterHoster encodes name, businessName, tags.
func EncodeRegisterHoster(in domain.RegisterHosterInput) []byte {
	return args.New().
		AddString(in.Name).
		AddString(in.BusinessName).
		AddString(domain.JoinTags(in.Categories)).
		Bytes()
}

// EncodeRegisterDeveloper encodes name, website, tags.
func EncodeRegisterDeveloper(in domain.RegisterDeveloperInput) []byte {
	return args.New().
		AddString(in.Name).
		AddString(in.Website).
		AddString(domain.JoinTags(in.Categories)).
		Bytes()
}

// EncodeCreateCampaign encodes title, description, category, targetUrl,
// creativeRef, pricingModel, rate(u64 base units), budget(u64 base units).
func EncodeCreateCampaign(in domain.CreateCampaignInput) []byte {
	return args.New().
		AddString(in.Title).
		AddString(in.Description).
		AddString(string(in.Category)).
		AddString(in.TargetURL).
		AddString(in.CreativeRef).
		AddString(string(in.PricingModel)).
		AddU64(units.FloatToBaseUnits(in.Rate)).
		AddU64(units.FloatToBaseUnits(in.Budget)).
		Bytes()
}

// EncodeUpdateCampaignStatus encodes id(u32), status.
func EncodeUpdateCampaignStatus(id uint32, status domain.CampaignStatus) []byte {
	return args.New().AddU32(id).AddString(string(status)).Bytes()
}

// EncodeUpdateCampaignDetails encodes id(u32), title, description,
// category, targetUrl, creativeRef, pricingModel, rate(u64 base units).
func EncodeUpdateCampaignDetails(id uint32, in domain.UpdateCampaignDetailsInput) []byte {
	return args.New().
		AddU32(id).
		AddString(in.Title).
		AddString(in.Description).
		AddString(string(in.Category)).
		AddString(in.TargetURL).
		AddString(in.CreativeRef).
		AddString(string(in.PricingModel)).
		AddU64(units.FloatToBaseUnits(in.Rate)).
		Bytes()
}

// EncodeBatchSize encodes batchSize(u32) for triggerScheduledPayouts.
func EncodeBatchSize(batchSize uint32) []byte {
	return args.New().AddU32(batchSize).Bytes()
}

// EncodeCampaign writes one campaign in the wire order consumed by
// DecodeCampaign. Used by the stub ledger in tests and by tooling that
// fabricates responses.
func EncodeCampaign(a *args.Args, c *domain.Campaign) *args.Args {
	return a.
		AddU32(uint32(c.ID)).
		AddString(c.Owner).
		AddString(c.Title).
		AddString(c.Description).
		AddString(string(c.Category)).
		AddString(c.TargetURL).
		AddString(c.CreativeRef).
		AddString(string(c.PricingModel)).
		AddU64(units.FloatToBaseUnits(c.Rate())).
		AddU64(units.FloatToBaseUnits(c.Budget)).
		AddU64(units.FloatToBaseUnits(c.Spent)).
		AddString(string(c.Status)).
		AddU64(c.Impressions).
		AddU64(c.Clicks).
		AddU64(uint64(c.CreatedAt)).
		AddU64(uint64(c.UpdatedAt))
}

// EncodeCampaignList writes a u32 count followed by the campaigns.
func EncodeCampaignList(campaigns []domain.Campaign) []byte {
	a := args.New().AddU32(uint32(len(campaigns)))
	for i := range campaigns {
		EncodeCampaign(a, &campaigns[i])
	}
	return a.Bytes()
}
