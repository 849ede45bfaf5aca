package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.uber.org/multierr"

	"github.com/preston-bernstein/mister-service/internal/app/teams"
	"github.com/preston-bernstein/mister-service/internal/config"
	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/cpmodel/pbsat"
	httpserver "github.com/preston-bernstein/mister-service/internal/http"
	"github.com/preston-bernstein/mister-service/internal/http/handlers"
	"github.com/preston-bernstein/mister-service/internal/http/middleware"
	"github.com/preston-bernstein/mister-service/internal/logging"
	"github.com/preston-bernstein/mister-service/internal/metrics"
	"github.com/preston-bernstein/mister-service/internal/random"
	"github.com/preston-bernstein/mister-service/internal/selection"
)

var (
	metricsSetup = metrics.Setup
	newRand      = func() (selection.Rand, error) { return random.NewLockedFromCrypto() }
)

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	teamsService  *teams.Service
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server backed by the pseudo-boolean solver.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	engine := cpmodel.Limit(pbsat.New(cfg.SolverTimeLimit, logger), cfg.MaxConcurrent, logger)
	return newServerWithEngine(cfg, logger, engine, nil)
}

func newServerWithEngine(cfg config.Config, logger *slog.Logger, engine cpmodel.Engine, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	rng, err := newRand()
	if err != nil {
		return nil, err
	}
	svc := teams.NewService(engine, rng, logger, recorder)
	httpSrv := buildHTTPServer(cfg, svc, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		teamsService:  svc,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv, metricsSrv httpServer, metricsStop func(context.Context) error) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsStop,
	}
}

func buildHTTPServer(cfg config.Config, svc handlers.TeamMaker, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(svc, logger, cfg.MaxBodyBytes)
	router := httpserver.NewRouter(handler)
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout(cfg.SolverTimeLimit),
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the HTTP and metrics servers, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) error {
	s.startMetrics()
	s.startServer(stop)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	return s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logging.Error(s.logger, "graceful shutdown failed", shutdownErr)
		err = multierr.Append(err, shutdownErr)
	}

	if s.metricsServer != nil {
		if shutdownErr := s.metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", shutdownErr)
			err = multierr.Append(err, shutdownErr)
		}
	}

	if s.metricsStop != nil {
		if stopErr := s.metricsStop(shutdownCtx); stopErr != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", stopErr)
			err = multierr.Append(err, stopErr)
		}
	}

	logging.Info(s.logger, "shutdown complete", "errors", len(multierr.Errors(err)))
	return err
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           mux,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
