package httpx

import (
	"net/http"
)

// ReadinessChecker reports whether the identity backend is usable.
type ReadinessChecker interface {
	Ready() error
}

// HealthHandlers serves liveness and readiness checks.
type HealthHandlers struct {
	Backend ReadinessChecker
}

// Healthz returns 200 while the identity backend is usable and 503 once its
// initialization has failed.
// GET /healthz.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h != nil && h.Backend != nil {
		if err := h.Backend.Ready(); err != nil {
			writeHealth(w, r, http.StatusServiceUnavailable, map[string]string{
				"status":  "unavailable",
				"backend": "unavailable",
			})
			return
		}
	}
	writeHealth(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeHealth(w http.ResponseWriter, r *http.Request, code int, body map[string]string) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, body)
}
