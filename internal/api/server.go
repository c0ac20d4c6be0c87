package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nowmarket/internal/backfill"
	"nowmarket/internal/config"
	"nowmarket/internal/market"
	"nowmarket/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	engine   *market.Engine
	store    store.Store
	backfill *backfill.Manager
	mux      *chi.Mux
}

// New wires the router. backfillMgr may be nil when history seeding is
// disabled.
func New(cfg config.APIConfig, logger *slog.Logger, engine *market.Engine, snapshots store.Store, backfillMgr *backfill.Manager) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		engine:   engine,
		store:    snapshots,
		backfill: backfillMgr,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/market", s.handleMarketList)
		r.Get("/market/{symbol}", s.handleMarketDetail)
		r.Get("/indices", s.handleIndices)
		r.Get("/indices/{id}", s.handleIndexDetail)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/news", s.handleNews)
		r.Get("/clock", s.handleClock)
		r.Post("/orders", s.handleOrder)
		r.Post("/watchlist/{symbol}", s.handleWatchToggle)
		r.Post("/admin/snapshot", s.handleSnapshot)
	})
}

func (s *Server) handleMarketList(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.engine.Instruments(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stocks": stocks})
}

func (s *Server) handleMarketDetail(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := market.ValidateSymbol(symbol); err != nil {
		writeDomainError(w, err)
		return
	}
	if s.backfill != nil {
		if err := s.backfill.Ensure(r.Context(), symbol); err != nil {
			s.log.Warn("history backfill failed", "symbol", symbol, "err", err)
		}
	}
	detail, err := s.engine.Instrument(r.Context(), symbol)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	indices, err := s.engine.Indices(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"indices": indices})
}

func (s *Server) handleIndexDetail(w http.ResponseWriter, r *http.Request) {
	idx, err := s.engine.IndexByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := s.engine.Portfolio(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.News(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"news": items})
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	clock, err := s.engine.ClockMood(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clock)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Symbol string  `json:"symbol"`
		Side   string  `json:"side"`
		Shares float64 `json:"shares"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := market.ValidateSymbol(strings.ToUpper(in.Symbol)); err != nil {
		writeDomainError(w, err)
		return
	}
	units, err := market.SharesToUnits(in.Shares)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var result market.OrderResult
	switch strings.ToLower(strings.TrimSpace(in.Side)) {
	case "buy":
		result, err = s.engine.Buy(r.Context(), in.Symbol, units)
	case "sell":
		result, err = s.engine.Sell(r.Context(), in.Symbol, units)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("side must be buy or sell, got %q", in.Side))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWatchToggle(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := market.ValidateSymbol(symbol); err != nil {
		writeDomainError(w, err)
		return
	}
	watched, err := s.engine.ToggleWatch(r.Context(), symbol)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "watched": watched})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	blob, err := s.engine.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), blob); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "bytes": len(blob)})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrInsufficientFunds), errors.Is(err, market.ErrInsufficientShares):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrInvalidSymbol), errors.Is(err, market.ErrInvalidShares):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrStockNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, market.ErrEngineStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
