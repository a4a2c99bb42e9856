package api

import (
	"net/http"
	"time"

	"github.com/kjannette/trahn-prices/internal/cache"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database string                  `json:"database"`
	Cache    map[cache.Namespace]int `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disabled"
	if s.deps.DB != nil {
		dbStatus = "connected"
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			dbStatus = "disconnected"
		}
	}

	counts := make(map[cache.Namespace]int)
	for ns, st := range s.deps.Quotes.CacheStats() {
		counts[ns] = st.Count
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Database: dbStatus, Cache: counts},
	})
}
