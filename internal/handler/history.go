package handler

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/sakif/rulesmith/internal/auth"
	"github.com/sakif/rulesmith/internal/service"
)

// HistoryHandler manages a user's saved rule-set history.
//
//	POST /api/history/save   → save a generated rule-set
//	GET  /api/history/list   → list the caller's records, newest first
//	POST /api/history/delete → delete one of the caller's records
//
// All three routes sit behind RequireAuth; the userID always comes from the
// validated token, never from the request body.
type HistoryHandler struct {
	historySvc *service.HistoryService
	logger     *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(historySvc *service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc, logger: logger}
}

type saveRequest struct {
	Config json.RawMessage `json:"config"`
	Rules  string          `json:"rules"`
}

type deleteRequest struct {
	RecordID string `json:"recordId"`
}

// HandleSave stores a generated rule-set for the authenticated user.
//
// HTTP: POST /api/history/save
// Body: {"config": {...}, "rules": "..."}
func (h *HistoryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid save body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	record, err := h.historySvc.Save(r.Context(), userID, req.Config, req.Rules)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "saved", record)
}

// HandleList returns the authenticated user's records, newest first.
//
// HTTP: GET /api/history/list
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	records, err := h.historySvc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", records)
}

// HandleDelete removes one of the authenticated user's records.
//
// HTTP: POST /api/history/delete
// Body: {"recordId": "..."}
//
// Deleting someone else's record and deleting a nonexistent one both come
// back 404 — the compound (id, owner) match doesn't reveal which it was.
func (h *HistoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid delete body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	if err := h.historySvc.Delete(r.Context(), userID, req.RecordID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "deleted", nil)
}
