package repository

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/rulesmith/internal/model"
	"github.com/sakif/rulesmith/internal/storage"
)

// compile-time check that *History implements HistoryRepository
var _ HistoryRepository = (*History)(nil)

// History is the store-backed HistoryRepository.
type History struct {
	store *storage.Store[model.HistoryRecord]
}

// NewHistory creates a History repository over the given store.
func NewHistory(store *storage.Store[model.HistoryRecord]) *History {
	return &History{store: store}
}

// Append persists a new record, assigning ID and CreatedAt if unset.
func (h *History) Append(_ context.Context, record *model.HistoryRecord) {
	if record.ID == "" {
		record.ID = xid.New().String()
	}
	if record.CreatedAt == "" {
		record.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	h.store.Append(*record)
}

// ListByUser returns all records owned by userID, in insertion order.
// Ordering for presentation (createdAt descending) is the service's job —
// the store guarantees nothing beyond insertion order.
func (h *History) ListByUser(_ context.Context, userID string) []model.HistoryRecord {
	all := h.store.List()
	out := make([]model.HistoryRecord, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// Delete removes the first record matching both id and owner.
func (h *History) Delete(_ context.Context, recordID, userID string) bool {
	return h.store.Delete(func(r model.HistoryRecord) bool {
		return r.ID == recordID && r.UserID == userID
	})
}
