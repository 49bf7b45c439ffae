package models

import (
	"github.com/localnerve/crmdb/internal/types"
)

// Property statuses used by the listing screens
const (
	PropertyStatusActive     = "Active"
	PropertyStatusSold       = "Sold"
	PropertyStatusAvailable  = "Available"
	PropertyStatusUnderOffer = "Under Offer"
	PropertyStatusBlocked    = "Blocked"
	PropertyStatusHold       = "Hold"
	PropertyStatusBooked     = "Booked"
)

// GeoPoint is a WGS84 coordinate captured for a listing or project
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Property is a listed unit
type Property struct {
	Key           string                 `json:"key"`
	Title         string                 `json:"title"`
	Price         types.FlexFloat64      `json:"price"`
	Type          string                 `json:"type,omitempty"`
	PropertyType  string                 `json:"propertyType,omitempty"`
	DealType      string                 `json:"dealType,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Area          string                 `json:"area,omitempty"`
	AreaSize      types.FlexFloat64      `json:"areaSize,omitempty"`
	SizeUnit      string                 `json:"sizeUnit,omitempty"`
	Bedrooms      types.FlexInt          `json:"bedrooms"`
	Bathrooms     types.FlexInt          `json:"bathrooms"`
	UnitNo        string                 `json:"unitNo,omitempty"`
	Project       string                 `json:"project,omitempty"`
	Society       string                 `json:"society,omitempty"`
	City          string                 `json:"city,omitempty"`
	Address       string                 `json:"address,omitempty"`
	Description   string                 `json:"description,omitempty"`
	ContactName   string                 `json:"contactName,omitempty"`
	ContactNumber string                 `json:"contactNumber,omitempty"`
	Images        types.FlexList[string] `json:"images,omitempty"`
	Features      types.FlexList[string] `json:"features,omitempty"`
	Amenities     types.FlexList[string] `json:"amenities,omitempty"`
	LocationURL   string                 `json:"locationUrl,omitempty"`
	Coordinates   *GeoPoint              `json:"coordinates,omitempty"`
}

func (p Property) RecordKey() string { return p.Key }

func (p Property) WithKey(key string) Property {
	p.Key = key
	return p
}
