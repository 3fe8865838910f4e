package ui

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"statview/adapters/ingest"
	"statview/internal"
	"statview/internal/config"
	"statview/internal/session"
)

// Server is the HTTP collaborator around the analysis pipeline. It owns
// the session store, parses uploads, and renders whatever the pipeline
// returns; all statistical work happens in the pipeline packages.
type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	loader   *ingest.Loader
	sessions *session.Store
	uploads  *semaphore.Weighted
	log      *internal.Logger
}

// NewServer wires the server against a config
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.Default(),
		cfg:      cfg,
		loader:   ingest.NewLoader(cfg.Data.MaxUploadBytes, logger),
		sessions: session.NewStore(cfg.Session.TTL, logger),
		uploads:  semaphore.NewWeighted(cfg.Server.MaxConcurrent),
		log:      logger.Named("ui"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.POST("/sessions", s.handleCreateSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.PUT("/sessions/:id/table", s.handleReplaceTable)

	api.GET("/sessions/:id/overview", s.handleOverview)
	api.PUT("/sessions/:id/columns", s.handleSetColumns)

	api.GET("/sessions/:id/stats", s.handleStats)
	api.GET("/sessions/:id/stats.csv", s.handleStatsCSV)
	api.GET("/sessions/:id/stats.xlsx", s.handleStatsXLSX)

	api.GET("/sessions/:id/correlation", s.handleCorrelation)
	api.GET("/sessions/:id/correlation/:column/top", s.handleTopCorrelated)

	api.GET("/sessions/:id/plots/scatter.png", s.handleScatterPlot)
	api.GET("/sessions/:id/plots/box.png", s.handleBoxPlot)
	api.GET("/sessions/:id/plots/histogram.png", s.handleHistogramPlot)
	api.GET("/sessions/:id/plots/skewbar.png", s.handleSkewBarPlot)

	api.GET("/sessions/:id/report", s.handleReport)
	api.GET("/sessions/:id/report.html", s.handleReportHTML)
}

// Run starts the server and the session sweeper
func (s *Server) Run() error {
	go s.sweepLoop()
	addr := ":" + s.cfg.Server.Port
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(s.cfg.Session.SweepInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		s.sessions.Sweep(now)
	}
}
