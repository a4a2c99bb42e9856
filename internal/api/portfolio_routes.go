package api

import (
	"net/http"

	"github.com/kjannette/trahn-prices/internal/models"
)

type historyRequestJSON struct {
	Holdings []models.HoldingWeight `json:"holdings"`
	Days     int                    `json:"days"`
}

func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	var body historyRequestJSON
	if err := decodeBody(w, r, &body); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if body.Days == 0 {
		body.Days = defaultDays
	}
	for i := range body.Holdings {
		body.Holdings[i].Type = models.ParseAssetType(string(body.Holdings[i].Type))
	}
	s.writeHistory(w, r, body.Holdings, body.Days)
}

func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Holdings == nil {
		writeError(w, http.StatusServiceUnavailable, "holdings store not configured")
		return
	}
	days, err := parseDays(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	userID := r.PathValue("userID")
	holdings, err := s.deps.Holdings.ByUser(r.Context(), userID)
	if err != nil {
		s.log.WithError(err).WithField("user", userID).Error("load holdings")
		writeError(w, http.StatusInternalServerError, "failed to load holdings")
		return
	}
	s.writeHistory(w, r, holdings, days)
}

func (s *Server) writeHistory(w http.ResponseWriter, r *http.Request, holdings []models.HoldingWeight, days int) {
	series, err := s.deps.History.PortfolioHistory(r.Context(), holdings, days)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if series == nil {
		series = []models.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, series)
}
