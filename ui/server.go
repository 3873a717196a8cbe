package ui

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"calcdash/app"
	"calcdash/internal"
	"calcdash/internal/config"
	"calcdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API in front of the dashboard and upload services
type Server struct {
	router    *gin.Engine
	dashboard *app.DashboardService
	uploads   *app.UploadService
	cfg       *config.Config
	logger    *internal.Logger
}

// NewServer creates a server and registers its routes
func NewServer(cfg *config.Config, dashboard *app.DashboardService, uploads *app.UploadService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	s := &Server{
		router:    gin.New(),
		dashboard: dashboard,
		uploads:   uploads,
		cfg:       cfg,
		logger:    logger.With("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	admin := middleware.RequireAdminToken(s.cfg.Server.AdminToken)

	api := s.router.Group("/api")
	{
		dash := api.Group("/dashboard")
		dash.GET("", s.handleGetDashboard)
		dash.GET("/client", s.handleGetClient)
		dash.GET("/export.xlsx", admin, s.handleExport)
		dash.GET("/:section", s.handleGetSection)
		dash.PUT("/:section", admin, s.handleSaveSection)
		dash.POST("/reset", admin, s.handleReset)

		files := api.Group("/uploads", admin)
		files.POST("", s.handleUpload)
		files.POST("/apply", s.handleApply)
		files.GET("/history", s.handleHistory)
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
