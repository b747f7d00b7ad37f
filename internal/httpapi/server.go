package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stockboard/internal/mockfeed"
	"stockboard/internal/util"
	"stockboard/pkg/stockboard"
)

// Server serves the quote backend API from a mock feed.
type Server struct {
	feed      *mockfeed.Feed
	cal       *util.TradingCalendar
	notifier  Notifier
	publicURL string
	log       *slog.Logger
	now       func() time.Time
}

// NewServer creates a new backend HTTP server. publicURL is linked from
// notification messages.
func NewServer(
	feed *mockfeed.Feed,
	cal *util.TradingCalendar,
	notifier Notifier,
	publicURL string,
	log *slog.Logger,
) *Server {
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	return &Server{
		feed:      feed,
		cal:       cal,
		notifier:  notifier,
		publicURL: publicURL,
		log:       log,
		now:       time.Now,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stocks", s.handleStocks)
	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleStockDetail)
	mux.HandleFunc("GET /api/history/{symbol}", s.handleHistory)
	mux.HandleFunc("GET /api/market", s.handleMarket)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/notify/{symbol}", s.handleNotify)
}

// Handler returns an http.Handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(s.logMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+stockboard.RequestIDHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"requestID", r.Header.Get(stockboard.RequestIDHeader),
			"elapsed", time.Since(start),
		)
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
	json.NewEncoder(w).Encode(ErrorResponse{Detail: msg})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.feed.Quotes())
}

func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.feed.Detail(r.PathValue("symbol"))
	if errors.Is(err, mockfeed.ErrUnknownSymbol) {
		writeError(w, http.StatusNotFound, "Stock not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, d)
}

// handleHistory answers an empty list for unknown symbols, as the
// production backend does when its upstream has no data.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "5d"
	}
	interval := q.Get("interval")
	if interval == "" {
		interval = "60m"
	}

	h, err := s.feed.History(r.PathValue("symbol"), period, interval)
	switch {
	case errors.Is(err, mockfeed.ErrUnknownSymbol):
		writeJSON(w, []stockboard.HistoryPoint{})
	case errors.Is(err, mockfeed.ErrBadWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, h)
	}
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	resp := MarketResponse{Open: s.cal.IsMarketOpen(now)}
	if resp.Open {
		resp.Next = s.cal.NextClose(now)
	} else {
		resp.Next = s.cal.NextOpen(now)
	}
	writeJSON(w, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.feed.Refresh()
	s.log.Info("feed refreshed", "requestID", r.Header.Get(stockboard.RequestIDHeader))
	writeJSON(w, MessageResponse{Message: "Update triggered"})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	msg, err := s.feed.NotifyMessage(symbol, s.publicURL)
	if errors.Is(err, mockfeed.ErrUnknownSymbol) {
		writeError(w, http.StatusNotFound, "Stock not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.notifier.Send(r.Context(), msg); err != nil {
		s.log.Error("sending notification", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}
	writeJSON(w, MessageResponse{Message: "Notification sent successfully"})
}
