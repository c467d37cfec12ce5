package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tingly-dev/tingly-porter/internal/config"
	"github.com/tingly-dev/tingly-porter/internal/dataformat"
	"github.com/tingly-dev/tingly-porter/internal/obs"
	"github.com/tingly-dev/tingly-porter/internal/obs/otel"
	"github.com/tingly-dev/tingly-porter/internal/server/middleware"
	"github.com/tingly-dev/tingly-porter/internal/tmpstore"
)

const (
	defaultPurgeInterval   = 10 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// Server represents the HTTP admin server driving the import and export forms
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	watcher    *config.Watcher
	store      *tmpstore.Store
	tracker    *otel.SubmissionTracker
	recent     *obs.RecentLogHook
	detector   *dataformat.Detector

	// middleware
	submissionMW *middleware.SubmissionLogMiddleware
	requestMW    *middleware.RequestLogMiddleware

	// hot-reloadable state
	mu        sync.RWMutex
	formats   *config.Formats
	resources func(string) bool

	importHook ImportHook
	exportHook ExportHook

	// options
	host          string
	port          int
	purgeInterval time.Duration
	watchConfig   bool
	now           func() time.Time

	listenAddr net.Addr
	ready      chan struct{}
	version    string
}

// ServerOption defines a functional option for Server configuration
type ServerOption func(*Server)

// WithVersion sets the version reported by /health
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithHost overrides the configured listen host
func WithHost(host string) ServerOption {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort overrides the configured listen port; 0 picks a free port
func WithPort(port int) ServerOption {
	return func(s *Server) {
		s.port = port
	}
}

// WithImportHook sets the engine run when an import is confirmed
func WithImportHook(hook ImportHook) ServerOption {
	return func(s *Server) {
		s.importHook = hook
	}
}

// WithExportHook sets the engine that writes export files
func WithExportHook(hook ExportHook) ServerOption {
	return func(s *Server) {
		s.exportHook = hook
	}
}

// WithTracker records form submissions on tracker
func WithTracker(tracker *otel.SubmissionTracker) ServerOption {
	return func(s *Server) {
		s.tracker = tracker
	}
}

// WithRecentLog exposes hook through /api/v1/logs
func WithRecentLog(hook *obs.RecentLogHook) ServerOption {
	return func(s *Server) {
		s.recent = hook
	}
}

// WithStore replaces the staging store built from config
func WithStore(store *tmpstore.Store) ServerOption {
	return func(s *Server) {
		s.store = store
	}
}

// WithPurgeInterval sets how often expired uploads are purged
func WithPurgeInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		s.purgeInterval = d
	}
}

// WithConfigWatch enables hot reload of the config file
func WithConfigWatch(enabled bool) ServerOption {
	return func(s *Server) {
		s.watchConfig = enabled
	}
}

// WithClock replaces time.Now for export file names
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a new HTTP server instance with functional options
func NewServer(cfg *config.Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	formats, err := cfg.ResolveFormats()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:        cfg,
		formats:       formats,
		resources:     cfg.ResourceAllowed,
		host:          cfg.Server.Host,
		port:          cfg.Server.Port,
		purgeInterval: defaultPurgeInterval,
		now:           time.Now,
		ready:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		store, err := tmpstore.New(cfg.Upload.TmpDir, tmpstore.WithAllowedPatterns(cfg.Upload.AllowedPatterns...))
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	s.detector = dataformat.NewDetector(formats.Import...)

	if cfg.SubmissionLog.Enabled {
		writer, err := obs.NewRotatingWriter(&obs.RotationConfig{
			Filename:   cfg.SubmissionLog.File,
			MaxSize:    cfg.SubmissionLog.MaxSizeMB,
			MaxBackups: 5,
			Compress:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("submission log: %w", err)
		}
		s.submissionMW = middleware.NewSubmissionLogMiddleware(writer)
		if err := s.submissionMW.SetFilterExpression(cfg.SubmissionLog.Filter); err != nil {
			logrus.Warnf("Failed to set submission log filter '%s': %v, using default", cfg.SubmissionLog.Filter, err)
		}
		logrus.Infof("Submission log enabled, writing to %s", cfg.SubmissionLog.File)
	}
	s.requestMW = middleware.NewRequestLogMiddleware(nil)

	s.engine = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	if s.watchConfig && cfg.ConfigFile != "" {
		s.setupConfigWatcher()
	}

	return s, nil
}

// setupConfigWatcher initializes the configuration hot-reload watcher
func (s *Server) setupConfigWatcher() {
	watcher, err := config.NewWatcher(s.config)
	if err != nil {
		logrus.Warnf("Failed to create config watcher: %v", err)
		return
	}
	s.watcher = watcher
	watcher.AddCallback(s.ApplyConfig)
}

// ApplyConfig swaps in the format lists and filters of a reloaded config.
// Listener settings only change on restart.
func (s *Server) ApplyConfig(cfg *config.Config) {
	formats, err := cfg.ResolveFormats()
	if err != nil {
		logrus.Errorf("Ignoring reloaded config: %v", err)
		return
	}

	s.mu.Lock()
	s.formats = formats
	s.resources = cfg.ResourceAllowed
	s.detector = dataformat.NewDetector(formats.Import...)
	s.mu.Unlock()
	logrus.Debugf("Formats reloaded: import=%v export=%v", dataformat.Names(formats.Import), dataformat.Names(formats.Export))

	if s.submissionMW != nil {
		if err := s.submissionMW.SetFilterExpression(cfg.SubmissionLog.Filter); err != nil {
			logrus.Errorf("Failed to update submission log filter: %v", err)
		}
	}
}

func (s *Server) currentFormats() *config.Formats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formats
}

func (s *Server) currentDetector() *dataformat.Detector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detector
}

func (s *Server) resourceAllowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resources(name)
}

func (s *Server) maxUploadBytes() int64 {
	if s.config.Upload.MaxSizeMB <= 0 {
		return 32 << 20
	}
	return int64(s.config.Upload.MaxSizeMB) << 20
}

// setupMiddleware configures server middleware
func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestMW.Middleware())
	if s.submissionMW != nil {
		s.engine.Use(s.submissionMW.Middleware())
	}
}

// setupRoutes configures server routes
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.Health)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/formats", s.GetFormats)
		api.GET("/logs", s.GetLogs)

		resource := api.Group("/resources/:resource", s.requireResource)
		{
			resource.GET("/import/form", s.ImportFormSchema)
			resource.POST("/import", s.Upload)
			resource.POST("/import/confirm", s.ConfirmImport)

			resource.GET("/export/form", s.ExportFormSchema)
			resource.POST("/export", s.Export)

			resource.GET("/actions/export/form", s.ExportActionFormSchema)
			resource.POST("/actions/export", s.ExportAction)
		}
	}
}

func (s *Server) requireResource(c *gin.Context) {
	if !s.resourceAllowed(c.Param("resource")) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   fmt.Sprintf("unknown resource %q", c.Param("resource")),
		})
		return
	}
	c.Next()
}

// Start listens and serves until ctx is canceled or Stop is called
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.listenAddr = ln.Addr()
	s.mu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			logrus.Warnf("Failed to start config watcher: %v", err)
		} else {
			logrus.Infof("Configuration hot-reload enabled")
		}
	}

	purgeCtx, cancelPurge := context.WithCancel(ctx)
	defer cancelPurge()
	go s.purgeLoop(purgeCtx)

	serverError := make(chan error, 1)
	go func() {
		serverError <- s.httpServer.Serve(ln)
	}()
	logrus.Infof("Porter admin listening on http://%s", ln.Addr())
	close(s.ready)

	select {
	case err := <-serverError:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	}
}

// Ready is closed once the listener is bound
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, nil before Start
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

func (s *Server) purgeLoop(ctx context.Context) {
	maxAge := s.config.Upload.MaxAge
	if maxAge <= 0 || s.purgeInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed, err := s.store.Purge(maxAge)
			if err != nil {
				logrus.Warnf("Failed to purge staged uploads: %v", err)
			} else if removed > 0 {
				logrus.Infof("Purged %d expired staged uploads", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// GetRouter returns the Gin engine for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.engine
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.submissionMW != nil {
		s.submissionMW.Stop()
	}

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			logrus.Warnf("Failed to stop config watcher: %v", err)
		}
	}

	s.mu.RLock()
	httpServer := s.httpServer
	s.mu.RUnlock()
	if httpServer == nil {
		return nil
	}

	logrus.Infof("Shutting down server...")
	return httpServer.Shutdown(ctx)
}
