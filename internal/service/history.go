package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
	"github.com/sakif/rulesmith/internal/model"
	"github.com/sakif/rulesmith/internal/repository"
)

// HistoryService handles saving, listing, and deleting per-user history
// records.
type HistoryService struct {
	history repository.HistoryRepository
	logger  *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(history repository.HistoryRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{history: history, logger: logger}
}

// Save stores a generated rule-set for the user. Both the config and the
// rules text are required.
func (s *HistoryService) Save(ctx context.Context, userID string, config json.RawMessage, rules string) (*model.HistoryRecord, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	if emptyConfig(config) {
		return nil, apperror.ValidationFailed("config", "config is required")
	}
	if strings.TrimSpace(rules) == "" {
		return nil, apperror.ValidationFailed("rules", "rules are required")
	}

	record := &model.HistoryRecord{
		UserID: userID,
		Config: config,
		Rules:  rules,
	}
	// Repository assigns ID and CreatedAt.
	s.history.Append(ctx, record)

	s.logger.Info("history record saved",
		slog.String("recordID", record.ID),
		slog.String("userID", userID),
	)

	return record, nil
}

// List returns the user's records ordered by createdAt descending (newest
// first). The store only guarantees insertion order, so sorting happens
// here. RFC 3339 timestamps sort correctly as strings.
func (s *HistoryService) List(ctx context.Context, userID string) ([]model.HistoryRecord, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	records := s.history.ListByUser(ctx, userID)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})

	return records, nil
}

// Delete removes the user's record by ID. A record owned by someone else and
// a record that doesn't exist are deliberately the same outcome: the
// compound (id, owner) predicate conflates them, so no cross-owner probe can
// distinguish "exists but not yours" from "doesn't exist".
func (s *HistoryService) Delete(ctx context.Context, userID, recordID string) error {
	if userID == "" {
		return apperror.Unauthorized("authentication required")
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return apperror.ValidationFailed("recordId", "record ID is required")
	}

	if !s.history.Delete(ctx, recordID, userID) {
		return apperror.NotFound("history record", recordID)
	}

	s.logger.Info("history record deleted",
		slog.String("recordID", recordID),
		slog.String("userID", userID),
	)
	return nil
}

// emptyConfig reports whether the raw config payload is absent or JSON null.
func emptyConfig(config json.RawMessage) bool {
	trimmed := bytes.TrimSpace(config)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
