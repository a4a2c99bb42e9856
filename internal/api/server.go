package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/quotes"
	"github.com/kjannette/trahn-prices/internal/symbols"
)

const (
	maxBodyBytes = 1 << 20
	defaultDays  = 30
)

type QuoteService interface {
	GetStockPrice(ctx context.Context, symbol string) (models.Quote, error)
	GetCryptoPrice(ctx context.Context, symbol string) (models.Quote, error)
	GetBulkPrices(ctx context.Context, reqs []quotes.BulkRequest) (map[string]*models.Quote, error)
	CacheStats() map[cache.Namespace]cache.NamespaceStats
}

type HistoryService interface {
	PortfolioHistory(ctx context.Context, holdings []models.HoldingWeight, days int) ([]models.HistoryPoint, error)
}

type SearchService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

type HoldingsReader interface {
	ByUser(ctx context.Context, userID string) ([]models.HoldingWeight, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the routes. Holdings and DB are optional.
type Deps struct {
	Quotes   QuoteService
	History  HistoryService
	Search   SearchService
	Holdings HoldingsReader
	DB       Pinger
}

type Server struct {
	deps       Deps
	httpServer *http.Server
	handler    http.Handler
	apiKey     string
	log        *logrus.Entry
}

func NewServer(deps Deps, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		deps:   deps,
		apiKey: apiKey,
		log:    logrus.WithField("component", "api"),
	}

	mux := http.NewServeMux()

	// Quote routes
	mux.HandleFunc("GET /v1/quotes/stock/{symbol}", s.handleStockQuote)
	mux.HandleFunc("GET /v1/quotes/crypto/{symbol}", s.handleCryptoQuote)
	mux.HandleFunc("POST /v1/quotes/bulk", s.handleBulkQuotes)

	// Search
	mux.HandleFunc("GET /v1/search", s.handleSearch)

	// Portfolio history
	mux.HandleFunc("POST /v1/portfolio/history", s.handlePortfolioHistory)
	mux.HandleFunc("GET /v1/portfolio/{userID}/history", s.handleUserHistory)

	// Diagnostics
	mux.HandleFunc("GET /v1/cache/stats", s.handleCacheStats)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.Infof("REST API listening on http://localhost%s", s.httpServer.Addr)
	if s.apiKey != "" {
		s.log.Info("authentication: enabled (Bearer token)")
	} else {
		s.log.Info("authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func parseDays(r *http.Request) (int, error) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return defaultDays, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.Invalid("days", "%q is not a number", v)
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return models.Invalid("body", "%v", err)
	}
	return nil
}

// --- response helpers ---

// writeServiceError maps service errors to status codes. Validation is the
// caller's fault, unsupported symbols are a permanent 404 and provider
// failures without a cached fallback are a 502.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, symbols.ErrUnsupportedSymbol):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, external.ErrNotFound):
		writeError(w, http.StatusNotFound, "symbol not found")
	default:
		if pe, ok := external.AsProviderError(err); ok {
			s.log.WithError(err).Warn("provider failure with nothing cached")
			writeError(w, http.StatusBadGateway, fmt.Sprintf("price provider %s: %s", pe.Provider, pe.Kind))
			return
		}
		s.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
