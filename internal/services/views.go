package services

import (
	"context"
	"time"

	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
)

// Viewer is the signed-in user a view is attributed to
type Viewer struct {
	ID   string
	Name string
	Role string
}

// ViewerFromClaims attributes views by email, matching the stored logs
func ViewerFromClaims(c *Claims) Viewer {
	if c == nil {
		return Viewer{}
	}
	return Viewer{ID: c.Email, Name: c.Name, Role: c.Role}
}

func newViewLog(subjectID, label string, v Viewer, now time.Time) models.ViewLog {
	return models.ViewLog{
		SubjectID:    subjectID,
		SubjectLabel: label,
		UserID:       v.ID,
		UserName:     v.Name,
		UserRole:     v.Role,
		ViewedAt:     now.UTC().Format(time.RFC3339),
		Timestamp:    now.UnixMilli(),
	}
}

// LogPropertyView prepends a view of the property to viewedProperties
func LogPropertyView(ctx context.Context, s *store.Store, v Viewer, key string, now time.Time) (models.ViewLog, store.Result, error) {
	var entry models.ViewLog
	res := store.NotFound
	err := s.Update(ctx, func(tx *store.Tx) error {
		p, ok := store.Properties.GetIn(tx, key)
		if !ok {
			return nil
		}
		entry = store.ViewedProperties.PrependIn(tx, newViewLog(p.Key, p.Title, v, now))
		res = store.Applied
		return nil
	})
	return entry, res, err
}

// LogInquiryView prepends a view of the inquiry to viewedInquiries
func LogInquiryView(ctx context.Context, s *store.Store, v Viewer, key string, now time.Time) (models.ViewLog, store.Result, error) {
	var entry models.ViewLog
	res := store.NotFound
	err := s.Update(ctx, func(tx *store.Tx) error {
		i, ok := store.Inquiries.GetIn(tx, key)
		if !ok {
			return nil
		}
		entry = store.ViewedInquiries.PrependIn(tx, newViewLog(i.Key, i.Name, v, now))
		res = store.Applied
		return nil
	})
	return entry, res, err
}
