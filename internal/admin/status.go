package admin

import (
	"encoding/json"
	"net/http"

	"github.com/agentsform/studymate-api/internal/apimetrics"
	"github.com/agentsform/studymate-api/internal/store"
)

type serviceStatusResponse struct {
	Version       string         `json:"version"`
	TotalUsers    int            `json:"total_users"`
	TotalChildren int            `json:"total_children"`
	ByTier        map[string]int `json:"by_tier"`
}

// HandleHealthz returns 200 "ok" unconditionally (liveness probe).
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz returns a handler that checks database connectivity (readiness probe).
func HandleReadyz(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(); err != nil {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// HandleStatus returns a handler that reports an aggregate service snapshot.
func HandleStatus(st *store.Store, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byTier, err := st.UsersByTier()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Opportunistically sync gauges on status calls (in addition to the background updater).
		total := 0
		tiers := make(map[string]int, len(byTier))
		for tier, n := range byTier {
			apimetrics.UsersByTier.WithLabelValues(string(tier)).Set(float64(n))
			tiers[string(tier)] = n
			total += n
		}

		children, err := st.CountChildren()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := serviceStatusResponse{
			Version:       version,
			TotalUsers:    total,
			TotalChildren: children,
			ByTier:        tiers,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
