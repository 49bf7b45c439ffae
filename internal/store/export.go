package store

import (
	"context"
	"time"

	"github.com/localnerve/crmdb/internal/models"
)

// ExportVersion tags export documents
const ExportVersion = "1.0"

// ExportDocument is the full-system backup format
type ExportDocument struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exportedAt"`
	Data       *ExportData `json:"data"`
}

// ExportData holds the exported sections. On import a nil section is left
// alone; an empty one clears the collection.
type ExportData struct {
	Properties  []models.Property `json:"properties"`
	Inquiries   []models.Inquiry  `json:"inquiries"`
	Deals       []models.Deal     `json:"deals"`
	Tasks       []models.Task     `json:"tasks"`
	Contacts    []models.Contact  `json:"contacts"`
	MasterLists *MasterLists      `json:"masterLists"`
}

// MasterLists are the master-data lists carried in an export
type MasterLists struct {
	Areas     []models.MasterItem `json:"areas"`
	Societies []models.MasterItem `json:"societies"`
	Features  []models.MasterItem `json:"features"`
	Amenities []models.MasterItem `json:"amenities"`
	Sources   []models.MasterItem `json:"sources"`
}

// Export snapshots the exported sections
func (s *Store) Export(now time.Time) ExportDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ExportDocument{
		Version:    ExportVersion,
		ExportedAt: now.UTC(),
		Data: &ExportData{
			Properties: clone(Properties.items(s.state[Properties.Name()])),
			Inquiries:  clone(Inquiries.items(s.state[Inquiries.Name()])),
			Deals:      clone(Deals.items(s.state[Deals.Name()])),
			Tasks:      clone(Tasks.items(s.state[Tasks.Name()])),
			Contacts:   clone(Contacts.items(s.state[Contacts.Name()])),
			MasterLists: &MasterLists{
				Areas:     clone(Areas.items(s.state[Areas.Name()])),
				Societies: clone(Societies.items(s.state[Societies.Name()])),
				Features:  clone(Features.items(s.state[Features.Name()])),
				Amenities: clone(Amenities.items(s.state[Amenities.Name()])),
				Sources:   clone(Sources.items(s.state[Sources.Name()])),
			},
		},
	}
}

// Import replaces every section present in doc in one transaction
func (s *Store) Import(ctx context.Context, doc ExportDocument) error {
	if doc.Version == "" || doc.Data == nil {
		return ErrInvalidImport
	}
	d := doc.Data

	return s.Update(ctx, func(tx *Tx) error {
		replaceIfPresent(tx, Properties, d.Properties)
		replaceIfPresent(tx, Inquiries, d.Inquiries)
		replaceIfPresent(tx, Deals, d.Deals)
		replaceIfPresent(tx, Tasks, d.Tasks)
		replaceIfPresent(tx, Contacts, d.Contacts)
		if m := d.MasterLists; m != nil {
			replaceIfPresent(tx, Areas, m.Areas)
			replaceIfPresent(tx, Societies, m.Societies)
			replaceIfPresent(tx, Features, m.Features)
			replaceIfPresent(tx, Amenities, m.Amenities)
			replaceIfPresent(tx, Sources, m.Sources)
		}
		return nil
	})
}

func replaceIfPresent[T Record[T]](tx *Tx, c *Collection[T], items []T) {
	if items != nil {
		c.ReplaceIn(tx, items)
	}
}
