package repository

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/rulesmith/internal/model"
	"github.com/sakif/rulesmith/internal/storage"
)

// compile-time check that *Users implements UserRepository
var _ UserRepository = (*Users)(nil)

// Users is the store-backed UserRepository.
type Users struct {
	store *storage.Store[model.User]
}

// NewUsers creates a Users repository over the given store.
func NewUsers(store *storage.Store[model.User]) *Users {
	return &Users{store: store}
}

// Append persists a new user, assigning ID and CreatedAt if unset.
// IDs are xid strings — sortable, URL-safe, and collision-free without
// coordination.
func (u *Users) Append(_ context.Context, user *model.User) {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	u.store.Append(*user)
}

// FindByEmail returns the first user with the given email.
func (u *Users) FindByEmail(_ context.Context, email string) (*model.User, bool) {
	user, ok := u.store.Find(func(r model.User) bool { return r.Email == email })
	if !ok {
		return nil, false
	}
	return &user, true
}

// FindByUsername returns the first user with the given username.
func (u *Users) FindByUsername(_ context.Context, username string) (*model.User, bool) {
	user, ok := u.store.Find(func(r model.User) bool { return r.Username == username })
	if !ok {
		return nil, false
	}
	return &user, true
}

// FindByID returns the user with the given internal ID.
func (u *Users) FindByID(_ context.Context, id string) (*model.User, bool) {
	user, ok := u.store.Find(func(r model.User) bool { return r.ID == id })
	if !ok {
		return nil, false
	}
	return &user, true
}
