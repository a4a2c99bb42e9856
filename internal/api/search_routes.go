package api

import (
	"net/http"

	"github.com/kjannette/trahn-prices/internal/models"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.deps.Search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
