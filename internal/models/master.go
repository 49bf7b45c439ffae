package models

// MasterItem is one entry of a master-data list (areas, sources, ...)
type MasterItem struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (m MasterItem) RecordKey() string { return m.Key }

func (m MasterItem) WithKey(key string) MasterItem {
	m.Key = key
	return m
}
