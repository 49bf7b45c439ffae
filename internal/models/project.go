package models

import "github.com/localnerve/crmdb/internal/types"

// Project is a development with a unit inventory
type Project struct {
	Key            string        `json:"key"`
	Name           string        `json:"name"`
	Location       string        `json:"location,omitempty"`
	Status         string        `json:"status,omitempty"`
	TotalUnits     types.FlexInt `json:"totalUnits"`
	SoldUnits      types.FlexInt `json:"soldUnits"`
	Completion     types.FlexInt `json:"completion"`
	Developer      string        `json:"developer,omitempty"`
	ReraNumber     string        `json:"reraNumber,omitempty"`
	PossessionDate types.Date    `json:"possessionDate,omitempty"`
	LocationURL    string        `json:"locationUrl,omitempty"`
	Coordinates    *GeoPoint     `json:"coordinates,omitempty"`
}

func (p Project) RecordKey() string { return p.Key }

func (p Project) WithKey(key string) Project {
	p.Key = key
	return p
}
