package handler

import "net/http"

// HealthHandler reports process liveness and the active storage mode.
type HealthHandler struct {
	volatileMode func() bool
}

// NewHealthHandler creates a HealthHandler. volatileMode is the Selector's
// mode probe, injected as a func so the handler doesn't import storage.
func NewHealthHandler(volatileMode func() bool) *HealthHandler {
	return &HealthHandler{volatileMode: volatileMode}
}

type healthData struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HandleHealth returns the health envelope.
//
// HTTP: GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	storage := "durable"
	if h.volatileMode() {
		storage = "volatile"
	}
	writeSuccess(w, http.StatusOK, "", healthData{Status: "ok", Storage: storage})
}
