// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/quantrail/brokergate/internal/api/handler/api"
	"github.com/quantrail/brokergate/internal/api/middleware"
	"github.com/quantrail/brokergate/internal/broker"
	"github.com/quantrail/brokergate/internal/metrics"
)

// Server represents the host-facing HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// NewServer creates a new HTTP server exposing the gateway.
func NewServer(cfg Config, gw *broker.Gateway, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, gw, reg)
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, gw *broker.Gateway, reg *metrics.Registry) {
	account := apihandler.NewAccountHandler(gw)
	positions := apihandler.NewPositionsHandler(gw)
	orders := apihandler.NewOrdersHandler(gw)
	market := apihandler.NewMarketHandler(gw)
	watchlists := apihandler.NewWatchlistHandler(gw)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/v1/account", account.Get)
	api.HandleFunc("GET /api/v1/account/history", account.History)

	api.HandleFunc("GET /api/v1/positions", positions.List)
	api.HandleFunc("DELETE /api/v1/positions", positions.CloseAll)
	api.HandleFunc("GET /api/v1/positions/{symbol}", positions.Get)
	api.HandleFunc("DELETE /api/v1/positions/{symbol}", positions.Close)

	api.HandleFunc("GET /api/v1/orders", orders.List)
	api.HandleFunc("POST /api/v1/orders", orders.Place)
	api.HandleFunc("DELETE /api/v1/orders", orders.CancelAll)
	api.HandleFunc("GET /api/v1/orders/{id}", orders.Get)
	api.HandleFunc("DELETE /api/v1/orders/{id}", orders.Cancel)

	api.HandleFunc("GET /api/v1/market/stocks/{symbol}/snapshot", market.Snapshot)
	api.HandleFunc("GET /api/v1/market/stocks/snapshots", market.Snapshots)
	api.HandleFunc("GET /api/v1/market/stocks/{symbol}/bars", market.Bars)
	api.HandleFunc("GET /api/v1/market/crypto/snapshot", market.CryptoSnapshot)
	api.HandleFunc("GET /api/v1/market/clock", market.Clock)
	api.HandleFunc("GET /api/v1/market/calendar", market.Calendar)
	api.HandleFunc("GET /api/v1/options/contracts", market.OptionContracts)

	api.HandleFunc("GET /api/v1/watchlists", watchlists.List)
	api.HandleFunc("POST /api/v1/watchlists", watchlists.Create)
	api.HandleFunc("GET /api/v1/watchlists/{id}", watchlists.Get)
	api.HandleFunc("POST /api/v1/watchlists/{id}", watchlists.AddSymbol)
	api.HandleFunc("DELETE /api/v1/watchlists/{id}", watchlists.Delete)

	var protected http.Handler = api
	protected = middleware.APIKeyAuth(cfg.APIKey)(protected)
	if reg != nil {
		protected = metrics.HTTPMiddleware(reg)(protected)
	}
	s.mux.Handle("/api/", protected)

	s.mux.HandleFunc("/healthz", s.handleHealth)
	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
