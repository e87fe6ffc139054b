// Package api exposes the HTTP surface: auth, call upload and retrieval,
// stage triggers, coaching progress, reports and the websocket event feed.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"call-coach-go/internal/auth"
	"call-coach-go/internal/config"
	"call-coach-go/internal/events"
	"call-coach-go/internal/logger"
	"call-coach-go/internal/pipeline"
	"call-coach-go/internal/store"
)

type Server struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	runner *pipeline.Runner
	hub    *events.Hub
	auth   *auth.Service
}

func NewServer(cfg *config.Config, log *logger.Logger, st *store.Store, runner *pipeline.Runner, hub *events.Hub) *Server {
	return &Server{
		cfg:    cfg,
		log:    log.WithComponent("api"),
		store:  st,
		runner: runner,
		hub:    hub,
		auth:   auth.NewService(cfg.JWTSecret, cfg.TokenTTL),
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/register", s.handleRegister)
	r.POST("/api/auth/login", s.handleLogin)

	authed := r.Group("/", auth.Middleware(s.auth))
	{
		authed.GET("/api/auth/me", s.handleMe)

		authed.POST("/api/calls/upload", s.handleUpload)
		authed.GET("/api/calls", s.handleListCalls)
		authed.GET("/api/calls/:id", s.handleGetCall)
		authed.DELETE("/api/calls/:id", s.handleDeleteCall)

		authed.POST("/api/analysis/transcribe/:callId", s.handleTranscribe)
		authed.POST("/api/analysis/analyze/:callId", s.handleAnalyze)
		authed.GET("/api/analysis/:callId", s.handleGetAnalysis)

		authed.POST("/api/coaching/generate/:callId", s.handleGenerateCoaching)
		authed.GET("/api/coaching/:callId", s.handleGetCoaching)
		authed.POST("/api/coaching/progress/:callId", s.handleProgress)
		authed.POST("/api/coaching/quiz/:callId", s.handleQuiz)

		authed.GET("/api/reports/calls.xlsx", s.handleReport)

		authed.GET("/ws", s.handleWS)
	}

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.WithRequest(c.Request).WithField("status", c.Writer.Status()).Debug("request")
	}
}

// userID returns the authenticated user's id; Middleware guarantees
// claims are present on routes that reach here.
func userID(c *gin.Context) string {
	if claims := auth.FromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// respondError maps domain errors onto HTTP statuses. Precondition
// violations from the pipeline are the caller's fault, not the server's.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, pipeline.ErrInvalidState),
		errors.Is(err, pipeline.ErrStageInProgress),
		errors.Is(err, pipeline.ErrTranscriptMissing),
		errors.Is(err, pipeline.ErrAnalysisMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
