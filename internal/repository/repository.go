// Package repository defines typed data-access interfaces over the generic
// record store, plus their implementations.
//
// The service layer programs against these interfaces, never against
// storage.Store directly. That keeps the predicate logic (match by email,
// match by id+owner) in one place and lets tests substitute fakes.
//
// Context parameters are accepted for interface symmetry with the rest of
// the codebase, but the underlying store is synchronous whole-file I/O and
// defines no cancellation semantics — callers block until completion.
package repository

import (
	"context"

	"github.com/sakif/rulesmith/internal/model"
)

// UserRepository is the data-access contract for user accounts.
//
// Append never fails: under the soft-degradation policy the store absorbs
// backend failures. Uniqueness of email and username is NOT enforced here —
// the auth service must check both before appending.
type UserRepository interface {
	Append(ctx context.Context, user *model.User)
	FindByEmail(ctx context.Context, email string) (*model.User, bool)
	FindByUsername(ctx context.Context, username string) (*model.User, bool)
	FindByID(ctx context.Context, id string) (*model.User, bool)
}

// HistoryRepository is the data-access contract for history records.
type HistoryRepository interface {
	Append(ctx context.Context, record *model.HistoryRecord)
	ListByUser(ctx context.Context, userID string) []model.HistoryRecord
	// Delete removes the record matching both id AND owner. A wrong owner and
	// a nonexistent id are indistinguishable to the caller — both return false.
	Delete(ctx context.Context, recordID, userID string) bool
}
