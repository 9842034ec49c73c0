package model

import "encoding/json"

// HistoryRecord is a generated rule-set saved by a user.
//
// Config is kept as json.RawMessage — the server never interprets the
// structure beyond passing it to the prompt builder, so round-tripping the
// raw bytes avoids lossy re-encoding (key order, number formatting).
//
// UserID is a weak reference: there is no foreign-key enforcement and no
// cascading delete, so orphaned records are tolerated.
type HistoryRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Config    json.RawMessage `json:"config"`
	Rules     string          `json:"rules"`
	CreatedAt string          `json:"createdAt"`
}
