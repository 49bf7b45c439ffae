package services

import (
	"context"

	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
)

// Users manages sub-user records. Passwords are hashed on the way in and
// stripped on the way out.
type Users struct {
	store *store.Store
	auth  *Auth
}

// NewUsers creates the sub-user service
func NewUsers(s *store.Store, auth *Auth) *Users {
	return &Users{store: s, auth: auth}
}

func public(users []models.SubUser) []models.SubUser {
	out := make([]models.SubUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// List returns every sub-user without password hashes
func (u *Users) List() []models.SubUser {
	return public(store.SubUsers.List(u.store))
}

// Get returns one sub-user without its password hash
func (u *Users) Get(key string) (models.SubUser, bool) {
	user, ok := store.SubUsers.Get(u.store, key)
	return user.Public(), ok
}

// Add hashes the password and appends the user
func (u *Users) Add(ctx context.Context, user models.SubUser) (models.SubUser, error) {
	if user.Password != "" {
		hash, err := u.auth.HashPassword(user.Password)
		if err != nil {
			return models.SubUser{}, err
		}
		user.Password = hash
	}
	added, err := store.SubUsers.Add(ctx, u.store, user)
	return added.Public(), err
}

// Update replaces the user. An empty password keeps the stored hash.
func (u *Users) Update(ctx context.Context, user models.SubUser) (models.SubUser, store.Result, error) {
	if user.Password != "" {
		hash, err := u.auth.HashPassword(user.Password)
		if err != nil {
			return models.SubUser{}, store.NotFound, err
		}
		user.Password = hash
	}

	res := store.NotFound
	err := u.store.Update(ctx, func(tx *store.Tx) error {
		if user.Password == "" {
			if cur, ok := store.SubUsers.GetIn(tx, user.Key); ok {
				user.Password = cur.Password
			}
		}
		res = store.SubUsers.UpdateIn(tx, user)
		return nil
	})
	return user.Public(), res, err
}

// Delete removes the user
func (u *Users) Delete(ctx context.Context, key string) (store.Result, error) {
	return store.SubUsers.Delete(ctx, u.store, key)
}
