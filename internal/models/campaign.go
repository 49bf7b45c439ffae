package models

import "github.com/localnerve/crmdb/internal/types"

// Campaign is a marketing push for a listing
type Campaign struct {
	Key          string            `json:"key"`
	CampaignName string            `json:"campaignName"`
	Objective    string            `json:"objective,omitempty"`
	Platform     string            `json:"platform,omitempty"`
	Property     string            `json:"property,omitempty"`
	Budget       types.FlexFloat64 `json:"budget"`
	Status       string            `json:"status,omitempty"`
	StartDate    types.Date        `json:"startDate"`
	EndDate      types.Date        `json:"endDate"`
	Spent        types.FlexFloat64 `json:"spent"`
	Leads        types.FlexInt     `json:"leads"`
	Clicks       types.FlexInt     `json:"clicks"`
}

func (c Campaign) RecordKey() string { return c.Key }

func (c Campaign) WithKey(key string) Campaign {
	c.Key = key
	return c
}

// Active reports whether the campaign is running
func (c Campaign) Active() bool {
	return c.Status == "Active"
}
