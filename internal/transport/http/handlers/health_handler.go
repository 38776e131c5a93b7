package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	healthsvc "github.com/ivankudzin/matchrank/internal/services/health"
)

type healthEvaluator interface {
	Evaluate(ctx context.Context) (healthsvc.Report, error)
}

type HealthHandler struct {
	health healthEvaluator
	log    *zap.Logger
}

func NewHealthHandler(health healthEvaluator, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{health: health, log: log}
}

// Engine handles GET /admin/engine/health. The report is 200 even when
// unhealthy; the payload carries the verdict.
func (h *HealthHandler) Engine(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeInternal(w, "internal_error", "health evaluator unavailable")
		return
	}

	report, err := h.health.Evaluate(r.Context())
	if err != nil {
		h.log.Error("engine health evaluation failed", zap.Error(err))
		writeInternal(w, "internal_error", "failed to evaluate engine health")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
