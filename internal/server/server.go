// Package server exposes the HTTP control surface: health, runtime
// configuration, manual scan triggers, a live universe view, and recent
// alert history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/app"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"
	"cryptoScanBot/internal/universe"
)

const shutdownTimeout = 10 * time.Second

// Server serves the scanner control API.
type Server struct {
	httpServer *http.Server
	settings   *config.Store
	scans      *app.ScanService
	market     ports.MarketDataClient
	history    ports.AlertRepository
	logger     ports.Logger
}

// Config holds configuration for the control server.
type Config struct {
	ListenAddr string
	Settings   *config.Store
	Scans      *app.ScanService
	Market     ports.MarketDataClient
	History    ports.AlertRepository
	Logger     ports.Logger
}

// New creates the control server with all routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Settings == nil || cfg.Scans == nil || cfg.Market == nil || cfg.History == nil || cfg.Logger == nil {
		return nil, errors.New("all server dependencies are required")
	}

	s := &Server{
		settings: cfg.Settings,
		scans:    cfg.Scans,
		market:   cfg.Market,
		history:  cfg.History,
		logger:   cfg.Logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	api := r.PathPrefix("/scanner-api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleUpdateConfig).Methods(http.MethodPost)
	api.HandleFunc("/scan/{scanner}", s.handleTriggerScan).Methods(http.MethodPost)
	api.HandleFunc("/ath-atl/status", s.handleUniverseStatus).Methods(http.MethodGet)
	api.HandleFunc("/alerts/recent", s.handleRecentAlerts).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Control API listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route tree, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleIndex serves a service summary with the available endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"service": "crypto market scanner",
		"endpoints": []string{
			"GET /scanner-api/health",
			"GET /scanner-api/config",
			"POST /scanner-api/config",
			"POST /scanner-api/scan/{scanner}",
			"GET /scanner-api/ath-atl/status",
			"GET /scanner-api/alerts/recent",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	kinds := s.scans.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}

	exchange := "ok"
	pingCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.market.Ping(pingCtx); err != nil {
		exchange = "unreachable"
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"status":   "ok",
		"exchange": exchange,
		"scanners": names,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  s.settings.Snapshot(),
	})
}

// handleUpdateConfig merges the request body over the live settings, so a
// partial document only changes the keys it names.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	next := s.settings.Snapshot()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.settings.Apply(r.Context(), next); err != nil {
		if errors.Is(err, ports.ErrConfigurationError) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), err, "Failed to apply configuration", nil)
		s.writeError(w, http.StatusInternalServerError, "failed to persist configuration")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  s.settings.Snapshot(),
	})
}

func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["scanner"]
	count, err := s.scans.Trigger(r.Context(), domain.StrategyKind(name))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "unknown scanner: "+name)
			return
		}
		s.logger.Error(r.Context(), err, "Manual scan failed", map[string]interface{}{"scanner": name})
		s.writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"scanner": name,
		"alerts":  count,
	})
}

// handleUniverseStatus reports the ranked universe as the scanners would see
// it right now.
func (s *Server) handleUniverseStatus(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.market.GetTickers(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), err, "Universe status fetch failed", nil)
		s.writeError(w, http.StatusBadGateway, "exchange unavailable")
		return
	}
	settings := s.settings.Snapshot()
	ranked := universe.Select(tickers, settings.General.MinVolume24h, settings.General.TopN)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"enabled":     settings.ATHATL.Enabled,
		"top_gainers": universeView(ranked.TopGainers),
		"top_losers":  universeView(ranked.TopLosers),
	})
}

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	alerts, err := s.history.RecentAlerts(r.Context(), limit)
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to load recent alerts", nil)
		s.writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"alerts":  alerts,
	})
}

func universeView(tickers []domain.TickerSnapshot) []map[string]interface{} {
	view := make([]map[string]interface{}, 0, len(tickers))
	for _, t := range tickers {
		view = append(view, map[string]interface{}{
			"symbol":     t.Symbol,
			"last_price": t.LastPrice,
			"change_24h": t.Change24hPct,
			"volume_24h": t.QuoteVolume24h,
		})
	}
	return view
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(context.Background(), err, "Failed to encode response", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
