package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
	"github.com/sakif/rulesmith/internal/service"
)

// RulesHandler proxies rule generation to the external text-generation API.
type RulesHandler struct {
	rulesSvc *service.RulesService
	logger   *slog.Logger
}

// NewRulesHandler creates a RulesHandler.
func NewRulesHandler(rulesSvc *service.RulesService, logger *slog.Logger) *RulesHandler {
	return &RulesHandler{rulesSvc: rulesSvc, logger: logger}
}

type generateRequest struct {
	Config     json.RawMessage `json:"config"`
	Supplement string          `json:"supplement"`
}

// HandleGenerate assembles the prompt and returns the generated rule-set.
//
// HTTP: POST /api/generate-rules
// Body: {"config": {...}, "supplement": "..."}
//
// Upstream failures come back as HTTP 200 with {success:false, error:...} —
// a failed generation is a result the frontend renders inline, not a
// transport error. Validation failures are still 400.
func (h *RulesHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid generate body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false, Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	text, err := h.rulesSvc.Generate(r.Context(), req.Config, req.Supplement)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{
			Success: false,
			Error:   "generation_failed",
			Message: "rule generation failed, please try again",
		})
		return
	}

	writeSuccess(w, http.StatusOK, "", text)
}
