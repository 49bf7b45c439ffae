package models

import "github.com/localnerve/crmdb/internal/types"

// Deal pipeline stages
const (
	DealStageQualified   = "Qualified"
	DealStageProposal    = "Proposal"
	DealStageNegotiation = "Negotiation"
	DealStageClosedWon   = "Closed Won"
	DealStageClosedLost  = "Closed Lost"
)

// Deal is a pipeline opportunity. Client is the contact's display name.
type Deal struct {
	Key       string            `json:"key"`
	Title     string            `json:"title"`
	Client    string            `json:"client,omitempty"`
	Value     types.FlexFloat64 `json:"value"`
	Stage     string            `json:"stage,omitempty"`
	Agent     string            `json:"agent,omitempty"`
	InquiryID string            `json:"inquiryId,omitempty"`
	UnitID    string            `json:"unitId,omitempty"`
}

func (d Deal) RecordKey() string { return d.Key }

func (d Deal) WithKey(key string) Deal {
	d.Key = key
	return d
}

// Closed reports whether the deal has left the pipeline
func (d Deal) Closed() bool {
	return d.Stage == DealStageClosedWon || d.Stage == DealStageClosedLost
}
