// Package httpapi implements the StockLens backend HTTP API: quotes and
// history from the upstream provider, the chat assistant proxy, and the
// watchlist/portfolio/alert/settings CRUD surface.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"stocklens/internal/domain"
	"stocklens/internal/provider"
	"stocklens/internal/store"
	"stocklens/pkg/stocklens"
)

// Server holds the backend's dependencies and handlers.
type Server struct {
	fetcher    provider.Fetcher
	quotes     *provider.QuoteCache
	history    store.HistoryCache
	historyTTL time.Duration
	users      *store.SQLiteStore
	assistant  *Assistant
	log        *slog.Logger
}

// NewServer wires a Server from its dependencies.
func NewServer(
	fetcher provider.Fetcher,
	quotes *provider.QuoteCache,
	history store.HistoryCache,
	historyTTL time.Duration,
	users *store.SQLiteStore,
	assistant *Assistant,
	log *slog.Logger,
) *Server {
	return &Server{
		fetcher:    fetcher,
		quotes:     quotes,
		history:    history,
		historyTTL: historyTTL,
		users:      users,
		assistant:  assistant,
		log:        log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stock/{symbol}", s.handleQuote)
	mux.HandleFunc("GET /stock/{symbol}/history", s.handleHistory)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /clear", s.handleClear)

	mux.HandleFunc("GET /watchlist", s.handleGetWatchlist)
	mux.HandleFunc("PUT /watchlist/{symbol}", s.handleAddWatchlist)
	mux.HandleFunc("DELETE /watchlist/{symbol}", s.handleRemoveWatchlist)

	mux.HandleFunc("GET /portfolio", s.handleGetPortfolio)
	mux.HandleFunc("PUT /portfolio/{symbol}", s.handleUpsertHolding)
	mux.HandleFunc("DELETE /portfolio/{symbol}", s.handleDeleteHolding)

	mux.HandleFunc("GET /alerts", s.handleListAlerts)
	mux.HandleFunc("POST /alerts", s.handleCreateAlert)
	mux.HandleFunc("DELETE /alerts/{id}", s.handleDeleteAlert)

	mux.HandleFunc("GET /settings/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /settings/{key}", s.handlePutSetting)
}

// Handler returns the full API handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "service": "StockLens"})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := domain.NormalizeSymbol(r.PathValue("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	if q, ok := s.quotes.Get(symbol); ok {
		writeJSON(w, q)
		return
	}

	q, err := s.fetcher.Quote(r.Context(), symbol)
	if err != nil {
		s.log.Warn("quote fetch failed", "symbol", symbol, "provider", s.fetcher.Name(), "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("quote unavailable for %s", symbol))
		return
	}
	q.Symbol = symbol
	q.IsDemo = false

	s.quotes.Put(symbol, q)
	writeJSON(w, q)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := domain.NormalizeSymbol(r.PathValue("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.history.ReadSeries(r.Context(), symbol, period, s.historyTTL)
	if err != nil {
		s.log.Warn("history cache read failed", "symbol", symbol, "error", err)
	}
	if len(series) == 0 {
		series, err = s.fetcher.History(r.Context(), symbol, period)
		if err != nil {
			s.log.Warn("history fetch failed", "symbol", symbol, "provider", s.fetcher.Name(), "error", err)
			writeError(w, http.StatusBadGateway, fmt.Sprintf("history unavailable for %s", symbol))
			return
		}
		if err := s.history.WriteSeries(r.Context(), symbol, period, series); err != nil {
			s.log.Warn("history cache write failed", "symbol", symbol, "error", err)
		}
	}

	writeJSON(w, stocklens.HistoryResponse{
		Symbol: symbol,
		Period: string(period),
		Data:   stocklens.FromDomain(series),
	})
}

// ---------------------------------------------------------------------------
// Chat assistant
// ---------------------------------------------------------------------------

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "no message provided")
		return
	}

	reply := s.assistant.Ask(r.Context(), req.Message)
	writeJSON(w, map[string]string{"response": reply, "status": "success"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.assistant.Clear()
	writeJSON(w, map[string]string{"status": "cleared"})
}

// ---------------------------------------------------------------------------
// Watchlist
// ---------------------------------------------------------------------------

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.users.ListSymbols(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, map[string][]string{"symbols": symbols})
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if err := s.users.AddSymbol(r.Context(), symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.users.RemoveSymbol(r.Context(), r.PathValue("symbol")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Portfolio
// ---------------------------------------------------------------------------

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.users.ListHoldings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list holdings")
		return
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	writeJSON(w, map[string][]domain.Holding{"holdings": holdings})
}

func (s *Server) handleUpsertHolding(w http.ResponseWriter, r *http.Request) {
	var h domain.Holding
	if err := decodeJSON(r, &h); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.Symbol = r.PathValue("symbol")
	if h.Shares <= 0 || h.AvgPrice <= 0 {
		writeError(w, http.StatusBadRequest, "shares and avgPrice must be positive")
		return
	}
	if err := s.users.UpsertHolding(r.Context(), h); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteHolding(r.Context(), r.PathValue("symbol")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Alerts
// ---------------------------------------------------------------------------

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.users.ListAlerts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, map[string][]domain.Alert{"alerts": alerts})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var a domain.Alert
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.users.SaveAlert(r.Context(), &a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, a)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := s.users.DeleteAlert(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	value, err := s.users.GetSetting(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read setting")
		return
	}
	if value == nil {
		writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(value)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	value, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if !json.Valid(value) {
		writeError(w, http.StatusBadRequest, "settings value must be valid JSON")
		return
	}
	if err := s.users.PutSetting(r.Context(), r.PathValue("key"), value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
