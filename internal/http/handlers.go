package http

import (
	"net/http"
	"time"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "spendwise",
		"endpoints": []string{
			"GET  /api/health",
			"GET  /api/expenses",
			"POST /api/expenses",
			"GET  /api/expenses/uncategorized",
			"GET  /api/period",
			"PUT  /api/period",
			"GET  /api/period/current",
			"POST /api/period/archive",
			"GET  /api/archive",
			"POST /api/transactions",
			"GET  /api/categories",
			"GET  /api/savings-goals",
			"GET  /api/borrowed",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
