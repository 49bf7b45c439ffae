package store

import (
	"context"

	"github.com/localnerve/crmdb/internal/models"
)

// ToggleTask flips a task between Completed and Pending
func ToggleTask(ctx context.Context, s *Store, key string) (models.Task, Result, error) {
	var task models.Task
	res := NotFound
	err := s.Update(ctx, func(tx *Tx) error {
		cur, ok := Tasks.GetIn(tx, key)
		if !ok {
			Tasks.UpdateIn(tx, models.Task{Key: key})
			return nil
		}
		task = cur.Toggled()
		res = Tasks.UpdateIn(tx, task)
		return nil
	})
	return task, res, err
}
