package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/domain/desktop"
	"github.com/GriffinCanCode/webdesk/internal/domain/dock"
	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/domain/popout"
	api "github.com/GriffinCanCode/webdesk/internal/http"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webdesk/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	core    *desktop.Core
	dock    *dock.Dock
	channel *popout.Channel
	popouts *ws.PopoutHub
	streams *ws.StreamHub
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics

	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewServer creates a new server instance. The popout dispatcher starts
// immediately; Close stops it.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing desktop server",
		zap.String("port", cfg.Server.Port),
		zap.Int("viewport_width", cfg.Desktop.ViewportWidth),
		zap.Int("viewport_height", cfg.Desktop.ViewportHeight),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("webdesk", logger.Component("tracing"))

	initial, err := mode.Parse(cfg.Desktop.DefaultMode)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("desktop mode: %w", err)
	}

	core := desktop.New(desktop.Config{
		Viewport:    cfg.Desktop.Viewport(),
		InitialMode: initial,
	},
		desktop.WithLogger(logger.Component("desktop")),
		desktop.WithMetrics(metrics),
	)

	catalog, err := dock.LoadCatalog(cfg.Catalog.Dir, cfg.Catalog.Pattern, logger.Component("catalog"))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	metrics.SetCatalogEntries(catalog.Len())

	dk := dock.New(core, catalog,
		dock.WithLogger(logger.Component("dock")),
		dock.WithSpawner(dock.NewSpawner(cfg.Desktop.SpawnStep, cfg.Desktop.SpawnCycle)),
	)

	// Popout protocol: inbound frames queue on the channel, outbound
	// messages route through the hub to the owning socket.
	channel := popout.NewChannel(core,
		popout.WithLogger(logger.Component("popout")),
		popout.WithMetrics(metrics),
		popout.WithQueueSize(cfg.Popout.QueueSize),
	)
	popouts := ws.NewPopoutHub(channel, cfg.Popout.WriteTimeout, logger.Component("popout_ws"), metrics)
	channel.SetSender(popouts)
	core.SetCloseRequester(channel)

	streams := ws.NewStreamHub(core, logger.Component("stream"), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		channel.Run(ctx)
	}()

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(core, dk, &mode.Picker{}, logger.Component("http"))
	handlers.SetPopoutStatus(popouts)
	api.RegisterRoutes(router, handlers)

	// WebSocket
	router.GET("/stream", streams.HandleStream)
	router.GET(ws.PopoutPath, popouts.HandlePopout)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", func(c *gin.Context) {
		snap := metrics.GetSnapshot()
		snap.Windows = core.Snapshot().Stats()
		c.JSON(http.StatusOK, snap)
	})

	logger.Info("Server initialized successfully", zap.Int("catalog_apps", catalog.Len()))

	httpSrv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:  router,
		httpSrv: httpSrv,
		core:    core,
		dock:    dk,
		channel: channel,
		popouts: popouts,
		streams: streams,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		cancel:  cancel,
		stopped: stopped,
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var shutdownErr error
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		shutdownErr = fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	// Websockets are hijacked and not covered by Shutdown
	s.streams.Close()
	s.popouts.Close()

	s.cancel()
	<-s.stopped
	s.dock.Close()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return shutdownErr
}
