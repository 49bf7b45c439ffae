package models

// Inquiry statuses
const (
	InquiryStatusNew      = "New"
	InquiryStatusFollowUp = "Follow Up"
	InquiryStatusClosed   = "Closed"
)

// Inquiry is an inbound lead. Budget is free text ("50L-60L", "1Cr+").
type Inquiry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Contact     string `json:"contact,omitempty"`
	Interest    string `json:"interest,omitempty"`
	Status      string `json:"status,omitempty"`
	Source      string `json:"source,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Priority    string `json:"priority,omitempty"`
	LocationURL string `json:"locationUrl,omitempty"`
	PropertyID  string `json:"propertyId,omitempty"`
}

func (i Inquiry) RecordKey() string { return i.Key }

func (i Inquiry) WithKey(key string) Inquiry {
	i.Key = key
	return i
}
