// Package schema declares the fixed column layout of the aggregate file.
package schema

import "github.com/JonMunkholm/adcombiner/internal/core"

// Column names of the ad campaign schema.
const (
	ProviderName   = "Provider Name"
	CampaignID     = "CampaignID"
	CostPerAdClick = "Cost Per Ad Click"
	RedirectLink   = "Redirect Link"
	PhoneNumber    = "Phone Number"
	Address        = "Address"
	Zipcode        = "Zipcode"
)

// AdCampaignFieldSpecs defines the expected CSV columns of provider exports,
// in output order. Only Phone Number may be empty.
var AdCampaignFieldSpecs = []core.FieldSpec{
	{Name: ProviderName, Type: core.FieldText},
	{Name: CampaignID, Type: core.FieldText},
	{Name: CostPerAdClick, Type: core.FieldDecimal},
	{Name: RedirectLink, Type: core.FieldText},
	{Name: PhoneNumber, Type: core.FieldText, Nullable: true},
	{Name: Address, Type: core.FieldText},
	{Name: Zipcode, Type: core.FieldText},
}

// AdCampaigns is the process-wide schema built from AdCampaignFieldSpecs.
var AdCampaigns = core.MustSchema(AdCampaignFieldSpecs...)
